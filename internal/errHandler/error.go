package errHandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"runtime/debug"
	"strings"

	"github.com/prodyhq/prody/internal/response"
	"github.com/prodyhq/prody/internal/smtp"
)

// Machine-readable error tags that clients branch on, carried in the
// `errorMsg` field of the error envelope.
const (
	ErrMsgEmailVerificationRequired = "EMAIL_VERIFICATION_FAILED"
	ErrMsgGoogleAccount             = "GOOGLE_ACCOUNT_NO_PASSWORD"
)

// Sentinel errors for client mistakes that surface as 400s.
var (
	ErrAlreadyVerified   = errors.New("account is already verified")
	ErrInvalidOTP        = errors.New("invalid or expired OTP")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrNoRefreshNeeded   = errors.New("access token is still valid, no refresh needed")
)

type ErrorHandler struct {
	notificationEmail string
	baseURL           string
	logger            *slog.Logger
	mailer            smtp.MailerInterface
}

func New(notificationEmail, baseURL string, mailer smtp.MailerInterface, logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		notificationEmail: notificationEmail,
		baseURL:           baseURL,
		logger:            logger,
		mailer:            mailer,
	}
}

func (e *ErrorHandler) ReportServerError(r *http.Request, err error) {
	var (
		message = err.Error()
		trace   = string(debug.Stack())
	)

	if r != nil {
		requestAttrs := slog.Group("request", "method", r.Method, "url", r.URL.String())
		e.logger.Error(message, requestAttrs, "trace", trace)
	} else {
		e.logger.Error(message, "trace", trace)
	}

	// Server errors are emailed to the team when a notification address
	// has been configured. Failure to deliver is only logged.
	if e.notificationEmail != "" && e.mailer != nil {
		data := map[string]any{
			"BaseURL": e.baseURL,
			"Message": message,
			"Trace":   trace,
		}
		if r != nil {
			data["RequestMethod"] = r.Method
			data["RequestURL"] = r.URL.String()
		}

		err := e.mailer.Send(e.notificationEmail, data, "error-notification.tmpl")
		if err != nil {
			e.logger.Error(err.Error(), "trace", string(debug.Stack()))
		}
	}
}

type Error struct {
	w        http.ResponseWriter
	r        *http.Request
	errors   any
	status   int
	message  string
	errorMsg string
	headers  http.Header
}

func (e *ErrorHandler) ErrorMessage(d *Error) {
	d.message = strings.ToUpper(d.message[:1]) + d.message[1:]

	err := response.JSONErrorResponse(d.w, d.errors, d.message, d.status, d.errorMsg, d.headers)
	if err != nil {
		e.ReportServerError(d.r, err)
		d.w.WriteHeader(http.StatusInternalServerError)
	}
}

func (e *ErrorHandler) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	e.ReportServerError(r, err)

	message := "The server encountered a problem and could not process your request"
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusInternalServerError,
		message: message,
	})
}

func (e *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "The requested resource could not be found"
	}
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusNotFound,
		message: message,
	})
}

func (e *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("The %s method is not supported for this resource", r.Method)
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusMethodNotAllowed,
		message: message,
	})
}

func (e *ErrorHandler) BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusBadRequest,
		message: err.Error(),
	})
}

func (e *ErrorHandler) Conflict(w http.ResponseWriter, r *http.Request, message string) {
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusConflict,
		message: message,
	})
}

func (e *ErrorHandler) Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "You do not have permission to access this resource"
	}
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusForbidden,
		message: message,
	})
}

func (e *ErrorHandler) FailedValidation(w http.ResponseWriter, r *http.Request, v any) {
	message := "Validation failed"

	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusUnprocessableEntity,
		message: message,
		errors:  v,
	})
}

// Unauthorized covers the Unauthenticated taxonomy: wrong credentials,
// unverified accounts and Google-provisioned accounts attempting password
// login. The optional errorMsg lets clients tell those cases apart without
// leaking detail in the human-readable message.
func (e *ErrorHandler) Unauthorized(w http.ResponseWriter, r *http.Request, message, errorMsg string) {
	if message == "" {
		message = "Invalid credentials"
	}
	e.ErrorMessage(&Error{
		w:        w,
		r:        r,
		status:   http.StatusUnauthorized,
		message:  message,
		errorMsg: errorMsg,
	})
}

func (e *ErrorHandler) InvalidAuthenticationToken(w http.ResponseWriter, r *http.Request) {
	headers := make(http.Header)
	headers.Set("WWW-Authenticate", "Bearer")

	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusUnauthorized,
		message: "Invalid authentication token",
		headers: headers,
	})
}

func (e *ErrorHandler) AuthenticationRequired(w http.ResponseWriter, r *http.Request) {
	message := "You must be authenticated to access this resource"
	e.ErrorMessage(&Error{
		w:       w,
		r:       r,
		status:  http.StatusUnauthorized,
		message: message,
	})
}
