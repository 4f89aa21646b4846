package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var ErrInvalidIDToken = errors.New("google id token is invalid")

// Identity is the subset of the tokeninfo response the signin flow
// needs.
type Identity struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Audience   string `json:"aud"`
}

// Verifier resolves a client-supplied Google ID token against the
// tokeninfo endpoint and checks it was issued for our client id.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

type TokenInfoVerifier struct {
	clientID string
	client   *http.Client
}

func NewVerifier(clientID string) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	endpoint := tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach google tokeninfo: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, ErrInvalidIDToken
	}

	var identity Identity
	if err := json.NewDecoder(res.Body).Decode(&identity); err != nil {
		return nil, err
	}

	if identity.Audience != v.clientID {
		return nil, ErrInvalidIDToken
	}

	if identity.Email == "" {
		return nil, ErrInvalidIDToken
	}

	return &identity, nil
}
