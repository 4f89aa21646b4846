package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prodyhq/prody/internal/models"
)

func testIssuer() *Issuer {
	return NewIssuer("test_secret_key", "http://localhost:4444")
}

func testUser() *models.User {
	orgID := "org-123"
	return &models.User{
		ID:             "user-123",
		Email:          "ada@example.com",
		Role:           models.UserRoleAdmin,
		OrganizationID: &orgID,
	}
}

func TestNewPair_RoundTrip(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.NewPair(testUser())
	require.NoError(t, err)
	require.Equal(t, int(AccessTokenTTL.Seconds()), pair.ExpiresIn)

	access, err := issuer.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-123", access.UserID)
	require.Equal(t, "ada@example.com", access.Email)
	require.Equal(t, models.UserRoleAdmin, access.Role)
	require.NotNil(t, access.OrgID)
	require.Equal(t, "org-123", *access.OrgID)
	require.False(t, access.IsRefresh)

	refresh, err := issuer.Verify(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "user-123", refresh.UserID)
	require.True(t, refresh.IsRefresh)
	require.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
}

func TestNewPair_NoOrganization(t *testing.T) {
	issuer := testIssuer()

	user := testUser()
	user.OrganizationID = nil

	pair, err := issuer.NewPair(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Nil(t, claims.OrgID)
}

func TestVerify_WrongKey(t *testing.T) {
	pair, err := testIssuer().NewPair(testUser())
	require.NoError(t, err)

	other := NewIssuer("a_different_key", "http://localhost:4444")
	_, err = other.Verify(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongAudience(t *testing.T) {
	pair, err := testIssuer().NewPair(testUser())
	require.NoError(t, err)

	other := NewIssuer("test_secret_key", "http://elsewhere:9999")
	_, err = other.Verify(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := testIssuer().Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_Remaining(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.NewPair(testUser())
	require.NoError(t, err)

	claims, err := issuer.Peek(pair.AccessToken)
	require.NoError(t, err)

	// A fresh access token is still inside the refresh decline window.
	remaining := claims.Remaining(time.Now())
	require.Greater(t, remaining, RefreshThreshold)
	require.LessOrEqual(t, remaining, AccessTokenTTL)
}
