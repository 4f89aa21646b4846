package helper

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"
	"sync"

	"github.com/prodyhq/prody/internal/errHandler"
)

type HelperRepository struct {
	baseURL     string
	frontendURL string
	WG          *sync.WaitGroup
	errHandler  *errHandler.ErrorHandler
}

func New(baseURL, frontendURL string, wg *sync.WaitGroup, errHandler *errHandler.ErrorHandler) *HelperRepository {
	return &HelperRepository{
		baseURL:     baseURL,
		frontendURL: frontendURL,
		WG:          wg,
		errHandler:  errHandler,
	}
}

// NewEmailData seeds the template data map passed to the mailer.
func (h *HelperRepository) NewEmailData() map[string]any {
	data := map[string]any{
		"BaseURL":     h.baseURL,
		"FrontendURL": h.frontendURL,
	}

	return data
}

// BackgroundTask runs fn in its own goroutine, recovering panics and
// reporting any error. The wait group lets the server drain in-flight
// tasks during shutdown.
func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			err := recover()
			if err != nil {
				h.errHandler.ReportServerError(nil, fmt.Errorf("%s", err))
			}
		}()

		err := fn()
		if err != nil {
			h.errHandler.ReportServerError(nil, err)
		}
	}()
}

// GenerateOTP returns a 6-digit numeric code, zero padded.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateSecureToken returns byteLength random bytes hex encoded, used
// for password reset links.
func GenerateSecureToken(byteLength int) (string, error) {
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
