package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func resetRequest(t *testing.T, token, password string) *http.Request {
	t.Helper()

	requestBody, err := json.Marshal(map[string]string{
		"token":    token,
		"password": password,
	})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/auth/reset-password", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return req
}

// A reset link works exactly once: replaying it fails the same way an
// expired link does.
func TestHandleAuthResetPassword_TokenIsSingleUse(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.cache.SetPasswordResetToken("tok-abc123", "user-1"))
	env.db.UserRepo.On("UpdatePassword", "user-1", mock.Anything).Return(nil).Once()

	rr := httptest.NewRecorder()
	env.handler.HandleAuthResetPassword(rr, resetRequest(t, "tok-abc123", "N3w-pass-word!x"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	env.handler.HandleAuthResetPassword(rr, resetRequest(t, "tok-abc123", "N3w-pass-word!x"))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	env.db.UserRepo.AssertExpectations(t)
}

func TestHandleAuthResetPassword_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthResetPassword(rr, resetRequest(t, "never-issued", "N3w-pass-word!x"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	env.db.UserRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)
}
