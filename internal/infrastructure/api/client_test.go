package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/ports"
)

func newBareClient(backend *httptest.Server) *Client {
	return NewClient(backend.URL, http.DefaultTransport, 5*time.Second, zerolog.Nop())
}

func TestClient_Login_Success(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "maya@example.com" || body["password"] != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeTokens(w, "a1", "r1")
	}))
	defer backend.Close()

	pair, err := newBareClient(backend).Login(t.Context(), "maya@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.Access != "a1" || pair.Refresh != "r1" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
}

func TestClient_Login_BadCredentials(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
	}))
	defer backend.Close()

	_, err := newBareClient(backend).Login(t.Context(), "maya@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestClient_Register_Duplicate(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	}))
	defer backend.Close()

	_, err := newBareClient(backend).Register(t.Context(), ports.RegisterData{
		Email: "maya@example.com", Name: "Maya", Password: "hunter22!",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestClient_NotFoundMapping(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Request not found"})
	}))
	defer backend.Close()

	_, err := newBareClient(backend).RequestDetails(t.Context(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_DecodesErrorEnvelopes(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "access forbidden"})
	}))
	defer backend.Close()

	err := newBareClient(backend).Health(t.Context())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	var se *statusError
	if !errors.As(err, &se) || se.message != "access forbidden" {
		t.Fatalf("error envelope not decoded: %v", err)
	}
}

func TestClient_UpdateMe_SendsOnlyPatchedFields(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if _, ok := raw["bio"]; !ok {
			t.Fatalf("bio missing from patch: %v", raw)
		}
		if _, ok := raw["name"]; ok {
			t.Fatalf("unpatched field serialized: %v", raw)
		}
		_ = json.NewEncoder(w).Encode(domain.User{ID: 1, Email: "m@e.c", Name: "Maya", Bio: "painter", Role: domain.RoleArtist})
	}))
	defer backend.Close()

	bio := "painter"
	user, err := newBareClient(backend).UpdateMe(t.Context(), domain.UserPatch{Bio: &bio})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if user.Bio != "painter" {
		t.Fatalf("unexpected user: %+v", user)
	}
}
