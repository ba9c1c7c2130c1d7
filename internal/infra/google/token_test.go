package google

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testKeyPEM(t *testing.T, key *rsa.PrivateKey, pkcs1 bool) string {
	t.Helper()
	if pkcs1 {
		return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalPKCS8PrivateKey: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestTokenSourceExchangesSignedAssertion(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	var gotAssertion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if grant := r.PostFormValue("grant_type"); grant != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
			t.Errorf("grant_type = %q", grant)
		}
		gotAssertion = r.PostFormValue("assertion")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"issued-token","expires_in":3600}`)
	}))
	defer srv.Close()

	account := &ServiceAccount{
		ClientEmail: "svc@demo.iam.gserviceaccount.com",
		PrivateKey:  testKeyPEM(t, key, false),
		ProjectID:   "demo",
	}
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	src := NewTokenSource(account, TokenSourceOptions{
		TokenURL: srv.URL,
		Now:      func() time.Time { return issued },
	})

	token, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "issued-token" {
		t.Fatalf("token = %q, want %q", token, "issued-token")
	}

	parts := strings.Split(gotAssertion, ".")
	if len(parts) != 3 {
		t.Fatalf("assertion has %d segments, want 3", len(parts))
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	var header map[string]string
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		t.Fatalf("parse header: %v", err)
	}
	if header["alg"] != "RS256" || header["typ"] != "JWT" {
		t.Fatalf("header = %#v", header)
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode claims: %v", err)
	}
	var claims struct {
		Iss   string `json:"iss"`
		Sub   string `json:"sub"`
		Aud   string `json:"aud"`
		Iat   int64  `json:"iat"`
		Exp   int64  `json:"exp"`
		Scope string `json:"scope"`
	}
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		t.Fatalf("parse claims: %v", err)
	}
	if claims.Iss != account.ClientEmail || claims.Sub != account.ClientEmail {
		t.Fatalf("iss/sub = %q/%q", claims.Iss, claims.Sub)
	}
	if claims.Aud != srv.URL {
		t.Fatalf("aud = %q, want %q", claims.Aud, srv.URL)
	}
	if claims.Exp-claims.Iat != 3600 {
		t.Fatalf("validity = %d seconds, want 3600", claims.Exp-claims.Iat)
	}
	if claims.Iat != issued.Unix() {
		t.Fatalf("iat = %d, want %d", claims.Iat, issued.Unix())
	}
	if claims.Scope != "https://www.googleapis.com/auth/datastore" {
		t.Fatalf("scope = %q", claims.Scope)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	digest := sha256.Sum256([]byte(parts[0] + "." + parts[1]))
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestTokenSourceAcceptsPKCS1Keys(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok"}`)
	}))
	defer srv.Close()

	account := &ServiceAccount{
		ClientEmail: "svc@demo.iam.gserviceaccount.com",
		PrivateKey:  testKeyPEM(t, key, true),
		ProjectID:   "demo",
	}
	src := NewTokenSource(account, TokenSourceOptions{TokenURL: srv.URL})
	if _, err := src.Token(context.Background()); err != nil {
		t.Fatalf("Token returned error for PKCS#1 key: %v", err)
	}
}

func TestTokenSourceFailsOnEndpointError(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	account := &ServiceAccount{
		ClientEmail: "svc@demo.iam.gserviceaccount.com",
		PrivateKey:  testKeyPEM(t, key, false),
		ProjectID:   "demo",
	}
	src := NewTokenSource(account, TokenSourceOptions{TokenURL: srv.URL})

	_, err = src.Token(context.Background())
	if err == nil {
		t.Fatal("Token succeeded against a failing endpoint")
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("error does not carry endpoint body: %v", err)
	}
}

func TestTokenSourceFailsOnMissingAccessToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	account := &ServiceAccount{
		ClientEmail: "svc@demo.iam.gserviceaccount.com",
		PrivateKey:  testKeyPEM(t, key, false),
		ProjectID:   "demo",
	}
	src := NewTokenSource(account, TokenSourceOptions{TokenURL: srv.URL})

	if _, err := src.Token(context.Background()); err == nil {
		t.Fatal("Token accepted a response without access_token")
	}
}

func TestParseServiceAccountValidation(t *testing.T) {
	if _, err := ParseServiceAccount([]byte(`{"client_email":"a@b","private_key":"k"}`)); err == nil {
		t.Fatal("ParseServiceAccount accepted a descriptor without project_id")
	}
	if _, err := ParseServiceAccount([]byte(`not json`)); err == nil {
		t.Fatal("ParseServiceAccount accepted malformed JSON")
	}
	sa, err := ParseServiceAccount([]byte(`{"client_email":"a@b","private_key":"k","project_id":"p","token_uri":"https://t"}`))
	if err != nil {
		t.Fatalf("ParseServiceAccount returned error: %v", err)
	}
	if sa.TokenURI != "https://t" {
		t.Fatalf("TokenURI = %q", sa.TokenURI)
	}
}
