package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dukerupert/eventledger/internal/model"
	"github.com/dukerupert/eventledger/internal/proposal"
)

const proposalTimeout = 30 * time.Second

// EventLedger is the part of the ledger the event API needs.
type EventLedger interface {
	List() []model.Event
	Get(id string) (model.Event, error)
	Create(c model.NewEvent) (model.Event, error)
	Register(id string) error
	Update(id string, patch model.EventPatch) (model.Event, error)
}

// Proposer generates description text for a new event.
type Proposer interface {
	Configured() bool
	Propose(ctx context.Context, prompt string) (proposal.Result, error)
}

type EventHandler struct {
	ledger   EventLedger
	proposer Proposer
	logger   *slog.Logger
}

func NewEventHandler(l EventLedger, p Proposer, logger *slog.Logger) *EventHandler {
	return &EventHandler{ledger: l, proposer: p, logger: logger}
}

type createRequest struct {
	model.NewEvent
	GenerateDescription bool `json:"generateDescription"`
}

// List returns every event, optionally only those on ?date=YYYY-MM-DD.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events := h.ledger.List()

	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		events = lo.Filter(events, func(e model.Event, _ int) bool { return e.Date == date })
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.ledger.Get(r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	candidate := req.NewEvent
	if req.GenerateDescription && strings.TrimSpace(candidate.Description) == "" {
		w.Header().Set("X-Proposal", h.propose(r.Context(), &candidate))
	}

	event, err := h.ledger.Create(candidate)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// propose fills in the candidate's description from the proposal service.
// It never blocks creation; the returned outcome is reported to the caller.
func (h *EventHandler) propose(ctx context.Context, c *model.NewEvent) string {
	if h.proposer == nil || !h.proposer.Configured() {
		return "unavailable"
	}

	ctx, cancel := context.WithTimeout(ctx, proposalTimeout)
	defer cancel()

	res, err := h.proposer.Propose(ctx, proposal.BuildPrompt(*c))
	if err != nil {
		h.logger.Warn("description proposal failed", "error", err)
		return "failed"
	}
	if !res.OK {
		h.logger.Warn("description proposal returned no text")
		return "failed"
	}
	c.Description = res.Text
	return "applied"
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid patch: only name, description, date, startTime, endTime, location, capacity and organizer can change")
		return
	}

	event, err := h.ledger.Update(r.PathValue("id"), patch)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Register(r.PathValue("id")); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
