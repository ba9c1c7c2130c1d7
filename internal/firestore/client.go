package firestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when the requested document does not exist.
var ErrNotFound = errors.New("firestore: document not found")

const clientDefaultTimeout = 15 * time.Second

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL defaults to the public Firestore REST endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// Client performs single-document operations against the store's REST API.
// Every call is one network round trip with no caching and no retries; the
// caller supplies the bearer token authorizing the operation.
type Client struct {
	projectID string
	baseURL   string
	client    *http.Client
}

// NewClient builds a document client for one project.
func NewClient(projectID string, opts ClientOptions) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("firestore: project id is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://firestore.googleapis.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: clientDefaultTimeout}
	}
	return &Client{projectID: projectID, baseURL: baseURL, client: client}, nil
}

// Put creates or replaces the document at collection/docID with the given
// fields and returns the store's acknowledgment. The store applies patch
// semantics per field, so callers that need a full overwrite must send every
// field they own.
func (c *Client) Put(ctx context.Context, token, collection, docID string, fields map[string]Value) (map[string]Value, error) {
	body, err := EncodeDocument(fields)
	if err != nil {
		return nil, fmt.Errorf("firestore: encode document %s/%s: %w", collection, docID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.documentURL(collection, docID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("firestore: put %s/%s: %w", collection, docID, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firestore: put %s/%s: %w", collection, docID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("firestore: put %s/%s: read response: %w", collection, docID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("firestore: put %s/%s: store returned %d: %s", collection, docID, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	ack, err := DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("firestore: put %s/%s: %w", collection, docID, err)
	}
	return ack, nil
}

// Get fetches the document at collection/docID and decodes its field map.
// A missing document is reported as ErrNotFound, distinct from transport or
// store failures.
func (c *Client) Get(ctx context.Context, token, collection, docID string) (map[string]Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentURL(collection, docID), nil)
	if err != nil {
		return nil, fmt.Errorf("firestore: get %s/%s: %w", collection, docID, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firestore: get %s/%s: %w", collection, docID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("firestore: get %s/%s: store returned %d: %s", collection, docID, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("firestore: get %s/%s: read response: %w", collection, docID, err)
	}
	fields, err := DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("firestore: get %s/%s: %w", collection, docID, err)
	}
	return fields, nil
}

func (c *Client) documentURL(collection, docID string) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s/%s",
		c.baseURL, url.PathEscape(c.projectID), url.PathEscape(collection), url.PathEscape(docID))
}
