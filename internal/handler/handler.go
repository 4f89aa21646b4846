package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prodyhq/prody/internal/activity"
	"github.com/prodyhq/prody/internal/cache"
	"github.com/prodyhq/prody/internal/config"
	"github.com/prodyhq/prody/internal/errHandler"
	"github.com/prodyhq/prody/internal/file"
	"github.com/prodyhq/prody/internal/google"
	"github.com/prodyhq/prody/internal/helper"
	"github.com/prodyhq/prody/internal/realtime"
	"github.com/prodyhq/prody/internal/repository"
	"github.com/prodyhq/prody/internal/smtp"
	"github.com/prodyhq/prody/internal/token"
)

type RouteHandler struct {
	DB         repository.Database
	ErrHandler *errHandler.ErrorHandler
	Mailer     smtp.MailerInterface
	Helper     *helper.HelperRepository
	Cache      cache.Store
	Tokens     *token.Issuer
	Google     google.Verifier
	Uploader   file.Uploader
	Hub        realtime.Broadcaster
	Activity   activity.RecorderInterface
	Config     *config.Config
}

func NewRouteHandler(handler *RouteHandler) *RouteHandler {
	return &RouteHandler{
		DB:         handler.DB,
		ErrHandler: handler.ErrHandler,
		Mailer:     handler.Mailer,
		Helper:     handler.Helper,
		Cache:      handler.Cache,
		Tokens:     handler.Tokens,
		Google:     handler.Google,
		Uploader:   handler.Uploader,
		Hub:        handler.Hub,
		Activity:   handler.Activity,
		Config:     handler.Config,
	}
}

type queryStringValues struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	Priority  string
	Limit     int
	Offset    int
}

func retrieveUrlQueryValues(r *http.Request) *queryStringValues {
	var queryValues = &queryStringValues{}

	// Parse start_date if provided
	startDateStr := r.URL.Query().Get("from")
	if startDateStr != "" {
		parsedStart, err := time.Parse("2006-01-02", startDateStr)
		if err == nil {
			queryValues.StartDate = &parsedStart
		}
	}

	// Parse end_date if provided
	endDateStr := r.URL.Query().Get("to")
	if endDateStr != "" {
		parsedEnd, err := time.Parse("2006-01-02", endDateStr)
		if err == nil {
			queryValues.EndDate = &parsedEnd
		}
	}

	// Parse pagination params
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("page")

	// Default pagination values
	offset := 0
	limit := 10

	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}
	queryValues.Limit = limit

	if offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 1 {
			offset = (parsedOffset - 1) * limit
		}
	}
	queryValues.Offset = offset

	queryValues.Status = r.URL.Query().Get("status")
	queryValues.Priority = r.URL.Query().Get("priority")

	return queryValues
}
