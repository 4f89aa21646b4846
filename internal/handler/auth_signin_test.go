package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cradoe/gopass"
	"github.com/stretchr/testify/require"

	"github.com/prodyhq/prody/internal/models"
)

func signinRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()

	requestBody, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/auth/signin", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func verifiedTestUser(t *testing.T, password string) *models.User {
	t.Helper()

	hashed, err := gopass.Hash(password)
	require.NoError(t, err)

	now := time.Now()
	return &models.User{
		ID:             "8b9e7201-4fbb-4a1c-9e5c-4c2b1a3d5e6f",
		FirstName:      "Ada",
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		Role:           models.UserRoleMember,
		HashedPassword: hashed,
		VerifiedAt:     &now,
	}
}

func TestHandleAuthSignin_ValidCredentials(t *testing.T) {
	env := newTestEnv(t)

	testUser := verifiedTestUser(t, "C0rrect-horse-battery!")
	env.db.UserRepo.On("GetByEmail", "ada@example.com").Return(testUser, true, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthSignin(rr, signinRequest(t, "ada@example.com", "C0rrect-horse-battery!"))

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok, "expected response['data'] to be a map")

	tokens, ok := data["tokens"].(map[string]any)
	require.True(t, ok, "expected tokens in response data")
	require.NotEmpty(t, tokens["access_token"])
	require.NotEmpty(t, tokens["refresh_token"])

	// The issued access token must round-trip through our own verifier.
	claims, err := env.tokens.Verify(tokens["access_token"].(string))
	require.NoError(t, err)
	require.Equal(t, testUser.ID, claims.UserID)
	require.False(t, claims.IsRefresh)

	env.wait()
	recorded := env.recorder.Recorded()
	require.Len(t, recorded, 1)
	require.Equal(t, models.ActivityLogLoginAction, recorded[0].Log.Action)
}

func TestHandleAuthSignin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	testUser := verifiedTestUser(t, "C0rrect-horse-battery!")
	env.db.UserRepo.On("GetByEmail", "ada@example.com").Return(testUser, true, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthSignin(rr, signinRequest(t, "ada@example.com", "not-the-password"))

	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Equal(t, false, response["success"])
	require.NotContains(t, response, "errorMsg")
}

func TestHandleAuthSignin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	env.db.UserRepo.On("GetByEmail", "ghost@example.com").Return(nil, false, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthSignin(rr, signinRequest(t, "ghost@example.com", "whatever-pass1!"))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

// Accounts provisioned through Google have no password hash; a password
// signin must fail with the distinguishing tag and must not reach the
// hash comparison at all.
func TestHandleAuthSignin_GoogleProvisionedAccount(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now()
	googleUser := &models.User{
		ID:             "2a64c2bb-7b3f-4d07-9d6e-0f1e2d3c4b5a",
		FirstName:      "Grace",
		FullName:       "Grace Hopper",
		Email:          "grace@example.com",
		Role:           models.UserRoleMember,
		HashedPassword: "",
		VerifiedAt:     &now,
	}
	env.db.UserRepo.On("GetByEmail", "grace@example.com").Return(googleUser, true, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthSignin(rr, signinRequest(t, "grace@example.com", "any-password-at-all1!"))

	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Equal(t, "GOOGLE_ACCOUNT_NO_PASSWORD", response["errorMsg"])
}

func TestHandleAuthSignin_UnverifiedAccount(t *testing.T) {
	env := newTestEnv(t)

	testUser := verifiedTestUser(t, "C0rrect-horse-battery!")
	testUser.VerifiedAt = nil
	env.db.UserRepo.On("GetByEmail", "ada@example.com").Return(testUser, true, nil)

	rr := httptest.NewRecorder()
	env.handler.HandleAuthSignin(rr, signinRequest(t, "ada@example.com", "C0rrect-horse-battery!"))

	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Equal(t, "EMAIL_VERIFICATION_FAILED", response["errorMsg"])
}
