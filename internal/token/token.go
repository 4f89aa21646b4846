package token

import (
	"errors"
	"time"

	"github.com/pascaldekloe/jwt"

	"github.com/prodyhq/prody/internal/models"
)

const (
	// AccessTokenTTL is deliberately short; clients are expected to call
	// /auth/refresh with their refresh token.
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	// RefreshThreshold: a refresh request is declined while the current
	// access token still has more than this much validity left.
	RefreshThreshold = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the decoded, validated content of a session credential.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	OrgID     *string
	IsRefresh bool
	ExpiresAt time.Time
}

// Remaining reports how much validity the credential has left.
func (c *Claims) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Issuer signs and verifies the access/refresh token pairs that carry
// subject id, role and organization id between requests.
type Issuer struct {
	secretKey []byte
	baseURL   string
}

func NewIssuer(secretKey, baseURL string) *Issuer {
	return &Issuer{
		secretKey: []byte(secretKey),
		baseURL:   baseURL,
	}
}

func (i *Issuer) sign(user *models.User, ttl time.Duration, refresh bool) (string, error) {
	var claims jwt.Claims
	claims.Subject = user.ID

	now := time.Now()
	claims.Issued = jwt.NewNumericTime(now)
	claims.NotBefore = jwt.NewNumericTime(now)
	claims.Expires = jwt.NewNumericTime(now.Add(ttl))

	claims.Issuer = i.baseURL
	claims.Audiences = []string{i.baseURL}

	claims.Set = map[string]any{
		"email": user.Email,
		"role":  user.Role,
	}
	if user.OrganizationID != nil {
		claims.Set["org_id"] = *user.OrganizationID
	}
	if refresh {
		claims.Set["token_type"] = "refresh"
	}

	signed, err := claims.HMACSign(jwt.HS256, i.secretKey)
	if err != nil {
		return "", err
	}

	return string(signed), nil
}

// NewPair mints a fresh access/refresh pair for the user.
func (i *Issuer) NewPair(user *models.User) (*Pair, error) {
	access, err := i.sign(user, AccessTokenTTL, false)
	if err != nil {
		return nil, err
	}

	refresh, err := i.sign(user, RefreshTokenTTL, true)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

// Verify checks signature, expiry, issuer and audience, and decodes the
// custom claims. Expired and malformed tokens return the same error.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims, err := jwt.HMACCheck([]byte(tokenString), i.secretKey)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !claims.Valid(time.Now()) {
		return nil, ErrInvalidToken
	}

	if claims.Issuer != i.baseURL || !claims.AcceptAudience(i.baseURL) {
		return nil, ErrInvalidToken
	}

	return decode(claims), nil
}

// Peek decodes a token checking only the signature, not expiry. The
// refresh flow uses it to read how long the presented access token has
// left, even when that token has already expired.
func (i *Issuer) Peek(tokenString string) (*Claims, error) {
	claims, err := jwt.HMACCheck([]byte(tokenString), i.secretKey)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return decode(claims), nil
}

func decode(claims *jwt.Claims) *Claims {
	decoded := &Claims{
		UserID: claims.Subject,
	}

	if claims.Expires != nil {
		decoded.ExpiresAt = claims.Expires.Time()
	}
	if email, ok := claims.Set["email"].(string); ok {
		decoded.Email = email
	}
	if role, ok := claims.Set["role"].(string); ok {
		decoded.Role = role
	}
	if orgID, ok := claims.Set["org_id"].(string); ok {
		decoded.OrgID = &orgID
	}
	if tokenType, ok := claims.Set["token_type"].(string); ok {
		decoded.IsRefresh = tokenType == "refresh"
	}

	return decoded
}
