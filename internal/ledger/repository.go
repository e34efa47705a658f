package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/eventledger/internal/model"
	"github.com/dukerupert/eventledger/internal/schedule"
)

// Slot is the durable home of the ledger: one value holding the JSON array
// of every event.
type Slot interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// ChangeKind names a committed mutation.
type ChangeKind string

const (
	ChangeCreated    ChangeKind = "created"
	ChangeRegistered ChangeKind = "registered"
	ChangeUpdated    ChangeKind = "updated"
)

// Change is delivered to observers after a mutation has been persisted.
// Seq increases by one per committed mutation.
type Change struct {
	Seq   uint64
	Kind  ChangeKind
	Event model.Event
}

const (
	writeAttempts = 3
	writeBackoff  = 20 * time.Millisecond
)

// Repository owns the event collection. Every mutation runs under one write
// lock across read, decide, persist and swap, so concurrent creates cannot
// both claim overlapping spans and concurrent registrations cannot oversell.
// The in-memory collection is only replaced after the slot write succeeds.
// Observers receive changes in commit order.
type Repository struct {
	mu     sync.RWMutex
	slot   Slot
	events []model.Event
	seq    uint64
	newID  func() string
	logger *slog.Logger

	// pending is appended under mu and drained under notifyMu, so changes
	// reach observers in the order they were committed.
	pendMu    sync.Mutex
	pending   []Change
	notifyMu  sync.Mutex
	obsMu     sync.RWMutex
	observers []func(Change)
}

// Open builds a Repository over slot and loads any prior snapshot. A missing,
// unreadable or malformed snapshot yields an empty ledger; the failure is
// logged and never returned.
func Open(slot Slot, logger *slog.Logger) *Repository {
	r := &Repository{
		slot:   slot,
		events: []model.Event{},
		newID:  uuid.NewString,
		logger: logger,
	}
	r.load()
	return r
}

func (r *Repository) load() {
	data, err := r.slot.Read()
	if err != nil {
		r.logger.Warn("ledger load failed, starting empty", "error", &PersistenceError{Op: "load", Err: err})
		return
	}
	if len(data) == 0 {
		r.logger.Info("ledger slot empty, starting empty")
		return
	}

	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		r.logger.Warn("ledger snapshot malformed, starting empty", "error", err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	r.events = events
	r.logger.Info("ledger loaded", "events", len(events))
}

// OnChange registers fn to be called after every committed mutation. fn runs
// outside the ledger lock, one change at a time, in commit order. fn may read
// the ledger but must not mutate it.
func (r *Repository) OnChange(fn func(Change)) {
	r.obsMu.Lock()
	r.observers = append(r.observers, fn)
	r.obsMu.Unlock()
}

// publish queues the change under the next sequence number, releases r.mu
// and delivers everything queued. Caller must hold r.mu for writing.
func (r *Repository) publish(kind ChangeKind, e model.Event) {
	r.seq++
	r.pendMu.Lock()
	r.pending = append(r.pending, Change{Seq: r.seq, Kind: kind, Event: e})
	r.pendMu.Unlock()
	r.mu.Unlock()

	r.flush()
}

func (r *Repository) flush() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	for {
		r.pendMu.Lock()
		if len(r.pending) == 0 {
			r.pendMu.Unlock()
			return
		}
		c := r.pending[0]
		r.pending = r.pending[1:]
		r.pendMu.Unlock()

		r.notify(c)
	}
}

func (r *Repository) notify(c Change) {
	r.obsMu.RLock()
	observers := slices.Clone(r.observers)
	r.obsMu.RUnlock()

	for _, fn := range observers {
		fn(c)
	}
}

// List returns a copy of every event in storage order.
func (r *Repository) List() []model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events)
}

// Get returns a copy of the event with the given id.
func (r *Repository) Get(id string) (model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Event{}, schedule.ErrNotFound
	}
	return r.events[i], nil
}

// Len reports how many events the ledger holds.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Seq returns the sequence number of the last committed mutation. It is not
// persisted and restarts at zero with the process.
func (r *Repository) Seq() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seq
}

// Snapshot returns the collection encoded exactly as it is stored in the slot.
func (r *Repository) Snapshot() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return json.Marshal(r.events)
}

// Create validates c against the current collection, assigns it an id and
// persists it. On any error the ledger is unchanged.
func (r *Repository) Create(c model.NewEvent) (model.Event, error) {
	c = schedule.Normalize(c)
	if err := schedule.CheckFields(c); err != nil {
		return model.Event{}, err
	}

	r.mu.Lock()
	if err := schedule.Validate(c, r.events); err != nil {
		r.mu.Unlock()
		return model.Event{}, err
	}

	e := model.Event{
		ID:          r.newID(),
		Name:        c.Name,
		Description: c.Description,
		Date:        c.Date,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		Location:    c.Location,
		Capacity:    c.Capacity,
		Organizer:   c.Organizer,
	}
	next := append(slices.Clone(r.events), e)
	if err := r.commit(next); err != nil {
		r.mu.Unlock()
		return model.Event{}, err
	}

	r.logger.Info("event created", "id", e.ID, "date", e.Date, "start", e.StartTime, "end", e.EndTime)
	r.publish(ChangeCreated, e)
	return e, nil
}

// Register adds one participant to the event with the given id.
func (r *Repository) Register(id string) error {
	r.mu.Lock()
	i, e, err := schedule.Register(id, r.events)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	next := slices.Clone(r.events)
	next[i] = e
	if err := r.commit(next); err != nil {
		r.mu.Unlock()
		return err
	}

	r.logger.Debug("participant registered", "id", id, "registered", e.RegisteredParticipants, "capacity", e.Capacity)
	r.publish(ChangeRegistered, e)
	return nil
}

// Update merges patch into the event with the given id. Field rules are
// re-checked on every update and the span is re-validated against the rest
// of the ledger whenever the patch touches date or times.
func (r *Repository) Update(id string, patch model.EventPatch) (model.Event, error) {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return model.Event{}, schedule.ErrNotFound
	}

	fields := schedule.Normalize(patch.Apply(r.events[i]).Fields())
	updated := withFields(r.events[i], fields)
	if err := r.checkUpdate(updated, fields, patch); err != nil {
		r.mu.Unlock()
		return model.Event{}, err
	}

	next := slices.Clone(r.events)
	next[i] = updated
	if err := r.commit(next); err != nil {
		r.mu.Unlock()
		return model.Event{}, err
	}

	r.logger.Info("event updated", "id", id)
	r.publish(ChangeUpdated, updated)
	return updated, nil
}

func (r *Repository) checkUpdate(updated model.Event, fields model.NewEvent, patch model.EventPatch) error {
	if err := schedule.CheckFields(fields); err != nil {
		return err
	}
	if err := schedule.CheckCapacity(updated); err != nil {
		return err
	}
	if patch.TouchesSchedule() {
		return schedule.ValidateExcept(fields, r.events, updated.ID)
	}
	return nil
}

// commit persists next and, only on success, makes it the live collection.
// Caller must hold r.mu for writing.
func (r *Repository) commit(next []model.Event) error {
	data, err := json.Marshal(next)
	if err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}

	b := retry.WithMaxRetries(writeAttempts-1, retry.NewExponential(writeBackoff))
	err = retry.Do(context.Background(), b, func(ctx context.Context) error {
		if err := r.slot.Write(data); err != nil {
			r.logger.Warn("ledger write failed", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}

	r.events = next
	return nil
}

func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.events, func(e model.Event) bool { return e.ID == id })
}

func withFields(e model.Event, f model.NewEvent) model.Event {
	e.Name = f.Name
	e.Description = f.Description
	e.Date = f.Date
	e.StartTime = f.StartTime
	e.EndTime = f.EndTime
	e.Location = f.Location
	e.Capacity = f.Capacity
	e.Organizer = f.Organizer
	return e
}
