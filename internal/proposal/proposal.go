package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/eventledger/internal/model"
)

var ErrNotConfigured = errors.New("proposal service not configured")

// Config holds the generative text endpoint settings.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Result is the outcome of a proposal request. OK is true only when the
// service answered with non-empty text.
type Result struct {
	Text string
	OK   bool
}

// Service asks an external text generator for an event description.
type Service struct {
	config Config
	client *http.Client
}

// NewService creates a proposal service. A zero Endpoint leaves it
// unconfigured and every request fails with ErrNotConfigured.
func NewService(cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Service{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether an endpoint is set.
func (s *Service) Configured() bool {
	return s.config.Endpoint != ""
}

// BuildPrompt assembles the single free-text prompt for an event.
func BuildPrompt(e model.NewEvent) string {
	var b strings.Builder
	b.WriteString("Write a short, inviting event description in markdown.\n")
	fmt.Fprintf(&b, "Name: %s\n", e.Name)
	fmt.Fprintf(&b, "Organizer: %s\n", e.Organizer)
	fmt.Fprintf(&b, "Location: %s\n", e.Location)
	fmt.Fprintf(&b, "When: %s from %s to %s\n", e.Date, e.StartTime, e.EndTime)
	fmt.Fprintf(&b, "Capacity: %d people\n", e.Capacity)
	if notes := strings.TrimSpace(e.Description); notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}
	return b.String()
}

type apiRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

type apiResponse struct {
	Text string `json:"text"`
}

// Propose sends prompt to the configured endpoint and returns the generated
// markdown.
func (s *Service) Propose(ctx context.Context, prompt string) (Result, error) {
	if !s.Configured() {
		return Result{}, ErrNotConfigured
	}

	body, err := json.Marshal(apiRequest{Model: s.config.Model, Prompt: prompt})
	if err != nil {
		return Result{}, fmt.Errorf("encode proposal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build proposal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("proposal API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("proposal API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Result{}, fmt.Errorf("decode proposal response: %w", err)
	}

	text := strings.TrimSpace(apiResp.Text)
	return Result{Text: text, OK: text != ""}, nil
}
