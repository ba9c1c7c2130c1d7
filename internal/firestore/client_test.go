package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientPut(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"projects/demo/databases/(default)/documents/itineraries/j1","fields":{"status":{"stringValue":"processing"}}}`))
	}))
	defer srv.Close()

	client, err := NewClient("demo", ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ack, err := client.Put(context.Background(), "tok", "itineraries", "j1", map[string]Value{
		"status": String("processing"),
	})
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Fatalf("method = %q, want PATCH", gotMethod)
	}
	if want := "/projects/demo/databases/(default)/documents/itineraries/j1"; gotPath != want {
		t.Fatalf("path = %q, want %q", gotPath, want)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}

	var sent struct {
		Fields map[string]json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("request body is not a document: %v", err)
	}
	if string(sent.Fields["status"]) != `{"stringValue":"processing"}` {
		t.Fatalf("status field = %s", sent.Fields["status"])
	}

	if ack["status"].Str() != "processing" {
		t.Fatalf("ack status = %q", ack["status"].Str())
	}
}

func TestClientPutErrorCarriesStoreBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewClient("demo", ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Put(context.Background(), "tok", "itineraries", "j1", map[string]Value{})
	if err == nil {
		t.Fatal("Put succeeded against a failing store")
	}
	if !strings.Contains(err.Error(), "PERMISSION_DENIED") {
		t.Fatalf("error does not carry the store body: %v", err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("error does not carry the status code: %v", err)
	}
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fields":{"destination":{"stringValue":"Lisbon"},"durationDays":{"integerValue":"3"}}}`))
	}))
	defer srv.Close()

	client, err := NewClient("demo", ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	fields, err := client.Get(context.Background(), "tok", "itineraries", "j1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if fields["destination"].Str() != "Lisbon" {
		t.Fatalf("destination = %q", fields["destination"].Str())
	}
	if fields["durationDays"].Int() != 3 {
		t.Fatalf("durationDays = %d", fields["durationDays"].Int())
	}
}

func TestClientGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"NOT_FOUND"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient("demo", ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Get(context.Background(), "tok", "itineraries", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNewClientRequiresProjectID(t *testing.T) {
	if _, err := NewClient("", ClientOptions{}); err == nil {
		t.Fatal("NewClient accepted an empty project id")
	}
}
