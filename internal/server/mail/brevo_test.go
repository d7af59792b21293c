package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBrevoMailer_SendValidationCode(t *testing.T) {
	var got sendRequest
	var gotPath, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	m := NewBrevoMailer(srv.URL+"/", "key-1", "taskroom", "noreply@taskroom.local")
	if err := m.SendValidationCode(context.Background(), "u@example.com", "Ann", "1234"); err != nil {
		t.Fatalf("SendValidationCode error: %v", err)
	}

	if gotPath != "/smtp/email" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "key-1" {
		t.Fatalf("unexpected api key %q", gotKey)
	}
	if got.Sender.Email != "noreply@taskroom.local" || len(got.To) != 1 || got.To[0].Email != "u@example.com" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	if !strings.Contains(got.HTMLContent, "1234") {
		t.Fatalf("code missing from body: %s", got.HTMLContent)
	}
}

func TestBrevoMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewBrevoMailer(srv.URL, "bad-key", "taskroom", "noreply@taskroom.local")
	err := m.SendValidationCode(context.Background(), "u@example.com", "Ann", "1234")
	if err == nil || !strings.Contains(err.Error(), "unexpected status 401") {
		t.Fatalf("expected status error, got %v", err)
	}
}
