package provision

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/identities" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"external_subject_id":"sub-123"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ident, err := c.CreateIdentity(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if ident.ExternalSubjectID != "sub-123" {
		t.Fatalf("expected sub-123, got %q", ident.ExternalSubjectID)
	}
}

func TestCreateIdentityConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"email already registered"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateIdentity(context.Background(), "admin@example.com")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", apiErr.Status)
	}
	if apiErr.Message != "email already registered" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestMessageListJoined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":["email must be valid","email is required"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.SendPasswordReset(context.Background(), "not-an-email")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "email must be valid, email is required" {
		t.Fatalf("expected joined message, got %q", apiErr.Message)
	}
}

func TestUnreachable(t *testing.T) {
	// A closed server gives a connection failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateIdentity(context.Background(), "admin@example.com")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestTimeoutMapsToUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.CreateIdentity(ctx, "admin@example.com")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable on deadline, got %v", err)
	}
}
