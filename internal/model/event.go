package model

// Date and time-of-day layouts used by every Event field. All values are
// local wall-clock strings with no zone component. Times are always zero
// padded so they sort lexically.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event is a scheduled item in the ledger. The JSON field names are the
// on-disk schema of the ledger slot and must not change.
type Event struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Description            string `json:"description"`
	Date                   string `json:"date"`
	StartTime              string `json:"startTime"`
	EndTime                string `json:"endTime"`
	Location               string `json:"location"`
	Capacity               int    `json:"capacity"`
	RegisteredParticipants int    `json:"registeredParticipants"`
	Organizer              string `json:"organizer"`
}

// Remaining reports how many registrations the event can still accept.
func (e Event) Remaining() int {
	if n := e.Capacity - e.RegisteredParticipants; n > 0 {
		return n
	}
	return 0
}

// NewEvent is a creation request. The ledger assigns ID and starts
// RegisteredParticipants at zero.
type NewEvent struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required,hhmm"`
	EndTime     string `json:"endTime" validate:"required,hhmm"`
	Location    string `json:"location" validate:"required"`
	Capacity    int    `json:"capacity" validate:"gte=1"`
	Organizer   string `json:"organizer" validate:"required"`
}

// EventPatch is a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Location    *string `json:"location,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Organizer   *string `json:"organizer,omitempty"`
}

// TouchesSchedule reports whether the patch changes the event's time span.
func (p EventPatch) TouchesSchedule() bool {
	return p.Date != nil || p.StartTime != nil || p.EndTime != nil
}

// Apply returns a copy of e with the patch merged in.
func (p EventPatch) Apply(e Event) Event {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	return e
}

// Fields returns the creation view of an existing event, used to re-run
// field validation after a patch.
func (e Event) Fields() NewEvent {
	return NewEvent{
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Organizer:   e.Organizer,
	}
}

// CalendarDay is one cell of the month grid. It is derived from the ledger on
// demand and never stored.
type CalendarDay struct {
	Date           string  `json:"date"`
	Day            int     `json:"day"`
	IsCurrentMonth bool    `json:"isCurrentMonth"`
	IsToday        bool    `json:"isToday"`
	Events         []Event `json:"events"`
}
