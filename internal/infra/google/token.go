package google

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	datastoreScope = "https://www.googleapis.com/auth/datastore"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionLifetime   = time.Hour
	tokenRequestTimeout = 10 * time.Second
)

// TokenSource exchanges a signed service-account assertion for a short-lived
// bearer token. Tokens are not cached: each Token call performs one signing
// operation and one network round trip.
type TokenSource struct {
	account  *ServiceAccount
	tokenURL string
	client   *http.Client
	now      func() time.Time
}

// TokenSourceOptions configures a TokenSource.
type TokenSourceOptions struct {
	// TokenURL overrides the exchange endpoint. Defaults to the descriptor's
	// token_uri, then to the public Google OAuth2 endpoint.
	TokenURL   string
	HTTPClient *http.Client
	Now        func() time.Time
}

// NewTokenSource builds a TokenSource for the given service account.
func NewTokenSource(account *ServiceAccount, opts TokenSourceOptions) *TokenSource {
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = account.TokenURI
	}
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: tokenRequestTimeout}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TokenSource{account: account, tokenURL: tokenURL, client: client, now: now}
}

// Token signs a JWT-bearer assertion and exchanges it for an access token.
// Any signing, network, or parse problem is a hard failure; there is no retry.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	assertion, err := s.assertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("token exchange: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange: endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("token exchange: parse response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token exchange: response carried no access_token")
	}
	return out.AccessToken, nil
}

// assertion builds the RS256-signed JWT presented at the token endpoint.
func (s *TokenSource) assertion() (string, error) {
	now := s.now()
	header := map[string]string{"alg": "RS256", "typ": "JWT"}
	claims := map[string]any{
		"iss":   s.account.ClientEmail,
		"sub":   s.account.ClientEmail,
		"aud":   s.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
		"scope": datastoreScope,
	}

	headerJSON, _ := json.Marshal(header)
	claimsJSON, _ := json.Marshal(claims)
	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(claimsJSON)

	key, err := s.account.signingKey()
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}
