package google

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
)

// ServiceAccount describes the identity used against Google APIs.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	ProjectID   string `json:"project_id"`
	TokenURI    string `json:"token_uri"`
}

// ParseServiceAccount decodes a service-account descriptor from its JSON form
// and checks that the fields needed for token exchange are present.
func ParseServiceAccount(raw []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	if sa.ClientEmail == "" {
		return nil, errors.New("service account: client_email is required")
	}
	if sa.PrivateKey == "" {
		return nil, errors.New("service account: private_key is required")
	}
	if sa.ProjectID == "" {
		return nil, errors.New("service account: project_id is required")
	}
	return &sa, nil
}

// signingKey parses the PEM private key. Keys are issued as PKCS#8 but older
// exports use PKCS#1, so both forms are accepted.
func (sa *ServiceAccount) signingKey() (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(sa.PrivateKey))
	if block == nil {
		return nil, errors.New("service account: private_key is not PEM encoded")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("service account: private_key is not an RSA key")
		}
		return rsaKey, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("service account: parse private_key: %w", err)
	}
	return key, nil
}
