package schedule

import "github.com/dukerupert/eventledger/internal/model"

// Register is the capacity guard: it returns the position of the event with
// the given id and a copy of it with one more participant. The caller must
// hold the ledger's write lock so the check and the increment are not
// observably separated.
func Register(id string, existing []model.Event) (int, model.Event, error) {
	for i, e := range existing {
		if e.ID != id {
			continue
		}
		if e.RegisteredParticipants >= e.Capacity {
			return i, e, ErrCapacity
		}
		e.RegisteredParticipants++
		return i, e, nil
	}
	return -1, model.Event{}, ErrNotFound
}

// CheckCapacity enforces 0 <= registeredParticipants <= capacity on a stored
// record, for edits that change capacity.
func CheckCapacity(e model.Event) error {
	if e.Capacity < 1 {
		return invalid("capacity must be at least 1")
	}
	if e.RegisteredParticipants < 0 || e.RegisteredParticipants > e.Capacity {
		return invalid("capacity %d is below the %d registered participants", e.Capacity, e.RegisteredParticipants)
	}
	return nil
}
