package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func refreshRequest(t *testing.T, body map[string]string) *http.Request {
	t.Helper()

	requestBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/auth/refresh", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestHandleAuthRefresh_Success(t *testing.T) {
	env := newTestEnv(t)

	testUser := verifiedTestUser(t, "C0rrect-horse-battery!")
	env.db.UserRepo.On("GetOne", testUser.ID).Return(testUser, true, nil)

	pair, err := env.tokens.NewPair(testUser)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthRefresh(rr, refreshRequest(t, map[string]string{
		"refresh_token": pair.RefreshToken,
	}))

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)

	tokens, ok := data["tokens"].(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, tokens["access_token"])
	require.NotEmpty(t, tokens["refresh_token"])
}

// A freshly minted access token has well over five minutes left, so
// presenting it alongside the refresh token gets the request declined.
func TestHandleAuthRefresh_DeclinedWhileAccessTokenFresh(t *testing.T) {
	env := newTestEnv(t)

	testUser := verifiedTestUser(t, "C0rrect-horse-battery!")

	pair, err := env.tokens.NewPair(testUser)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthRefresh(rr, refreshRequest(t, map[string]string{
		"refresh_token": pair.RefreshToken,
		"access_token":  pair.AccessToken,
	}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	env.db.UserRepo.AssertNotCalled(t, "GetOne", testUser.ID)
}

// The access token must never work as a refresh token.
func TestHandleAuthRefresh_RejectsAccessTokenAsRefresh(t *testing.T) {
	env := newTestEnv(t)

	testUser := verifiedTestUser(t, "C0rrect-horse-battery!")

	pair, err := env.tokens.NewPair(testUser)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthRefresh(rr, refreshRequest(t, map[string]string{
		"refresh_token": pair.AccessToken,
	}))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleAuthRefresh_UnverifiedUser(t *testing.T) {
	env := newTestEnv(t)

	testUser := verifiedTestUser(t, "C0rrect-horse-battery!")
	pair, err := env.tokens.NewPair(testUser)
	require.NoError(t, err)

	testUser.VerifiedAt = nil
	env.db.UserRepo.On("GetOne", testUser.ID).Return(testUser, true, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthRefresh(rr, refreshRequest(t, map[string]string{
		"refresh_token": pair.RefreshToken,
	}))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
