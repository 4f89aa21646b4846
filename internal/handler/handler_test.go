package handler

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	appcontext "github.com/prodyhq/prody/internal/context"
	"github.com/prodyhq/prody/internal/errHandler"
	"github.com/prodyhq/prody/internal/helper"
	"github.com/prodyhq/prody/internal/mocks"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/token"
)

// testEnv wires a RouteHandler against mocks, mirroring how the real
// application assembles it.
type testEnv struct {
	handler  *RouteHandler
	db       *mocks.MockDatabase
	cache    *mocks.MockCache
	mailer   *mocks.MockMailer
	hub      *mocks.MockBroadcaster
	recorder *mocks.MockRecorder
	google   *mocks.MockGoogleVerifier
	tokens   *token.Issuer
	wg       *sync.WaitGroup
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := mocks.NewMockConfig()

	errH := errHandler.New("", cfg.BaseURL, nil, logger)
	wg := &sync.WaitGroup{}

	env := &testEnv{
		db:       mocks.NewMockDatabase(),
		cache:    mocks.NewMockCache(),
		mailer:   new(mocks.MockMailer),
		hub:      new(mocks.MockBroadcaster),
		recorder: new(mocks.MockRecorder),
		google:   new(mocks.MockGoogleVerifier),
		tokens:   token.NewIssuer(cfg.Jwt.SecretKey, cfg.BaseURL),
		wg:       wg,
	}

	env.handler = NewRouteHandler(&RouteHandler{
		DB:         env.db,
		ErrHandler: errH,
		Mailer:     env.mailer,
		Helper:     helper.New(cfg.BaseURL, cfg.FrontendURL, wg, errH),
		Cache:      env.cache,
		Tokens:     env.tokens,
		Google:     env.google,
		Hub:        env.hub,
		Activity:   env.recorder,
		Config:     cfg,
	})

	return env
}

// authenticate stamps the user into the request context the same way the
// Authenticate middleware does.
func authenticate(r *http.Request, user *models.User) *http.Request {
	return appcontext.ContextSetAuthenticatedUser(r, user)
}

// wait drains outstanding background tasks so their side effects can be
// asserted.
func (env *testEnv) wait() {
	env.wg.Wait()
}
