package schedule

import (
	"errors"
	"testing"

	"github.com/dukerupert/eventledger/internal/model"
)

func candidate(date, start, end string) model.NewEvent {
	return model.NewEvent{
		Name:      "Workshop",
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Location:  "Hall A",
		Capacity:  10,
		Organizer: "Ops",
	}
}

func stored(id, date, start, end string) model.Event {
	return model.Event{
		ID:        id,
		Name:      "Stored " + id,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Location:  "Hall B",
		Capacity:  5,
		Organizer: "Ops",
	}
}

func TestValidateEndBeforeStart(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"equal", "10:00", "10:00"},
		{"reversed", "11:00", "10:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(candidate("2026-03-10", tt.start, tt.end), nil)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if err.Error() != "end time must be after start time" {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}

func TestValidateSpanCheckedBeforeClash(t *testing.T) {
	existing := []model.Event{stored("a", "2026-03-10", "09:00", "12:00")}

	err := Validate(candidate("2026-03-10", "11:00", "10:00"), existing)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation before clash", err)
	}
}

func TestValidateOverlap(t *testing.T) {
	existing := []model.Event{stored("a", "2026-03-10", "10:00", "11:00")}

	tests := []struct {
		name       string
		date       string
		start, end string
		clash      bool
	}{
		{"overlaps tail", "2026-03-10", "10:30", "11:30", true},
		{"overlaps head", "2026-03-10", "09:30", "10:30", true},
		{"contains", "2026-03-10", "09:00", "12:00", true},
		{"inside", "2026-03-10", "10:15", "10:45", true},
		{"touches end", "2026-03-10", "11:00", "12:00", false},
		{"touches start", "2026-03-10", "09:00", "10:00", false},
		{"other day", "2026-03-11", "10:00", "11:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(candidate(tt.date, tt.start, tt.end), existing)
			if !tt.clash {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ce *ClashError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *ClashError", err)
			}
			if ce.Conflict.ID != "a" {
				t.Errorf("conflict id = %q, want %q", ce.Conflict.ID, "a")
			}
			if !errors.Is(err, ErrClash) {
				t.Error("ClashError should match ErrClash")
			}
		})
	}
}

func TestValidateIgnoresLocation(t *testing.T) {
	existing := []model.Event{stored("a", "2026-03-10", "10:00", "11:00")}
	c := candidate("2026-03-10", "10:00", "11:00")
	c.Location = "Somewhere else entirely"

	if err := Validate(c, existing); !errors.Is(err, ErrClash) {
		t.Fatalf("err = %v, want clash across locations", err)
	}
}

func TestValidateReturnsFirstConflictInStorageOrder(t *testing.T) {
	existing := []model.Event{
		stored("a", "2026-03-10", "08:00", "09:00"),
		stored("b", "2026-03-10", "10:00", "10:15"),
		stored("c", "2026-03-10", "09:30", "12:00"),
	}

	var ce *ClashError
	err := Validate(candidate("2026-03-10", "09:45", "11:00"), existing)
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ClashError", err)
	}
	if ce.Conflict.ID != "b" {
		t.Errorf("conflict = %q, want %q", ce.Conflict.ID, "b")
	}
}

func TestValidateExceptSkipsSelf(t *testing.T) {
	existing := []model.Event{stored("a", "2026-03-10", "10:00", "11:00")}

	if err := ValidateExcept(candidate("2026-03-10", "10:30", "11:30"), existing, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBadLayout(t *testing.T) {
	if err := Validate(candidate("2026-13-40", "10:00", "11:00"), nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if err := Validate(candidate("2026-03-10", "25:00", "26:00"), nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCheckFields(t *testing.T) {
	ok := candidate("2026-03-10", "10:00", "11:00")
	if err := CheckFields(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.NewEvent)
		want   string
	}{
		{"missing name", func(c *model.NewEvent) { c.Name = "" }, "name is required"},
		{"missing organizer", func(c *model.NewEvent) { c.Organizer = "" }, "organizer is required"},
		{"missing location", func(c *model.NewEvent) { c.Location = "" }, "location is required"},
		{"zero capacity", func(c *model.NewEvent) { c.Capacity = 0 }, "capacity must be at least 1"},
		{"bad time", func(c *model.NewEvent) { c.StartTime = "9am" }, "startTime must be a zero-padded HH:MM time"},
		{"unpadded hour", func(c *model.NewEvent) { c.StartTime = "9:00" }, "startTime must be a zero-padded HH:MM time"},
		{"short minute", func(c *model.NewEvent) { c.EndTime = "09:5" }, "endTime must be a zero-padded HH:MM time"},
		{"hour out of range", func(c *model.NewEvent) { c.EndTime = "24:00" }, "endTime must be a zero-padded HH:MM time"},
		{"bad date", func(c *model.NewEvent) { c.Date = "10/03/2026" }, "date must use layout 2006-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ok
			tt.mutate(&c)
			err := CheckFields(c)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if err.Error() != tt.want {
				t.Errorf("message = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestNormalizeTrims(t *testing.T) {
	c := Normalize(model.NewEvent{Name: "  Talk ", Organizer: " Ops", Location: "Hall ", StartTime: " 10:00"})
	if c.Name != "Talk" || c.Organizer != "Ops" || c.Location != "Hall" || c.StartTime != "10:00" {
		t.Errorf("normalize = %+v", c)
	}
	if err := CheckFields(Normalize(model.NewEvent{Name: "   "})); err == nil {
		t.Error("whitespace-only name should fail")
	}
}

func TestSpanRejectsUnpaddedTimes(t *testing.T) {
	for _, tt := range [][2]string{{"9:00", "10:00"}, {"09:00", "10:0"}, {"09:00", "24:00"}} {
		if _, _, err := Span("2026-03-10", tt[0], tt[1]); !errors.Is(err, ErrValidation) {
			t.Errorf("Span(%q, %q) err = %v, want ErrValidation", tt[0], tt[1], err)
		}
	}
	if _, _, err := Span("2026-03-10", "09:00", "23:59"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSkipsUnpaddedStoredSpan(t *testing.T) {
	existing := []model.Event{stored("legacy", "2026-03-10", "9:00", "11:00")}
	if err := Validate(candidate("2026-03-10", "10:00", "10:30"), existing); err != nil {
		t.Errorf("unparseable stored span should not clash: %v", err)
	}
}
