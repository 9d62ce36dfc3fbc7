package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/arango/internal/constants"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// JWTConfig configures JWT issuance against /_open/auth.
type JWTConfig struct {
	// AuthURL is the full token issuance URL, e.g.
	// "http://localhost:8529/_open/auth".
	AuthURL  string
	Username string
	Password string

	// HTTPClient is optional; a short-timeout default is used otherwise.
	HTTPClient *http.Client
}

// JWTTokenManager obtains JWTs from the server's /_open/auth endpoint and
// caches them until shortly before expiry. Concurrent renewals triggered by
// simultaneous 401s coalesce into a single issuance request; waiters share
// its result.
type JWTTokenManager struct {
	config *JWTConfig
	store  *TokenStore
	group  singleflight.Group
}

// NewJWTTokenManager creates a manager for username/password credentials.
func NewJWTTokenManager(config *JWTConfig) *JWTTokenManager {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	return &JWTTokenManager{
		config: config,
		store:  &TokenStore{},
	}
}

// GetToken returns the cached token, issuing a fresh one when the cache is
// empty or stale.
func (m *JWTTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	return m.issue(ctx)
}

// RefreshToken forces issuance of a fresh token, replacing the cache.
func (m *JWTTokenManager) RefreshToken(ctx context.Context) error {
	m.store.Set(nil)

	_, err := m.issue(ctx)

	return err
}

// SetToken replaces the cached token.
func (m *JWTTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, ExpiresAt: expiresAt})
}

// Renewable reports that this manager can obtain fresh tokens.
func (m *JWTTokenManager) Renewable() bool {
	return true
}

// issue performs the issuance request under the coalescing guard. A caller
// arriving while a renewal is in flight waits for its result instead of
// issuing a duplicate request.
func (m *JWTTokenManager) issue(ctx context.Context) (string, error) {
	value, err, _ := m.group.Do("issue", func() (interface{}, error) {
		// A concurrent caller may have finished the renewal while this
		// one queued on the guard.
		if token := m.store.Get(); token.Valid() {
			return token.AccessToken, nil
		}

		token, err := m.requestToken(ctx)
		if err != nil {
			return nil, err
		}

		m.store.Set(token)

		return token.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	jwtValue, _ := value.(string)

	return jwtValue, nil
}

func (m *JWTTokenManager) requestToken(ctx context.Context) (*Token, error) {
	body, err := json.Marshal(map[string]string{
		"username": m.config.Username,
		"password": m.config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.AuthURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating auth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.config.HTTPClient.Do(req)
	if err != nil {
		return nil, &arango.AuthenticationError{Kind: arango.AuthUnreachable, Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &arango.AuthenticationError{Kind: arango.AuthUnreachable, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		arangoErr := arango.ParseArangoError(resp.StatusCode, respBody)

		return nil, &arango.AuthenticationError{Kind: arango.AuthRejected, Err: arangoErr}
	}

	var authResp struct {
		JWT string `json:"jwt"`
	}

	err = json.Unmarshal(respBody, &authResp)
	if err != nil || authResp.JWT == "" {
		return nil, &arango.AuthenticationError{
			Kind: arango.AuthRejected,
			Err:  fmt.Errorf("%w: %s", constants.ErrInvalidJWTFormat, string(respBody)),
		}
	}

	return &Token{
		AccessToken: authResp.JWT,
		ExpiresAt:   tokenExpiry(authResp.JWT),
	}, nil
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// client only needs the deadline, not trust in the token it just received
// over the authenticated channel. A token without exp never expires
// client-side.
func tokenExpiry(raw string) time.Time {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}

	_, _, err := parser.ParseUnverified(raw, claims)
	if err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
