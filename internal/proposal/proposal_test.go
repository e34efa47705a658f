package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/eventledger/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(model.NewEvent{
		Name: "Rust vs Go", Organizer: "Meetup", Location: "Loft",
		Date: "2026-11-02", StartTime: "18:00", EndTime: "20:00", Capacity: 40,
		Description: "  bring laptops ",
	})

	for _, want := range []string{
		"Name: Rust vs Go",
		"Organizer: Meetup",
		"Location: Loft",
		"When: 2026-11-02 from 18:00 to 20:00",
		"Capacity: 40 people",
		"Notes: bring laptops",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestProposeNotConfigured(t *testing.T) {
	s := NewService(Config{})
	if s.Configured() {
		t.Fatal("service without endpoint should not be configured")
	}
	res, err := s.Propose(context.Background(), "hi")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if res.OK {
		t.Error("result should not be OK")
	}
}

func TestProposeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		var req apiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Prompt != "describe it" || req.Model != "small" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(apiResponse{Text: "  **Join us!**  "})
	}))
	defer srv.Close()

	s := NewService(Config{Endpoint: srv.URL, APIKey: "secret", Model: "small"})
	res, err := s.Propose(context.Background(), "describe it")
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if !res.OK || res.Text != "**Join us!**" {
		t.Errorf("result = %+v", res)
	}
}

func TestProposeEmptyTextIsNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"   "}`))
	}))
	defer srv.Close()

	res, err := NewService(Config{Endpoint: srv.URL}).Propose(context.Background(), "x")
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if res.OK {
		t.Error("blank text must not be reported as OK")
	}
}

func TestProposeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewService(Config{Endpoint: srv.URL}).Propose(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error for 502")
	}
}
