package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/eventledger/internal/calendar"
	"github.com/dukerupert/eventledger/internal/clock"
	"github.com/dukerupert/eventledger/internal/model"
)

// EventLister is the read side of the ledger.
type EventLister interface {
	List() []model.Event
}

type CalendarHandler struct {
	ledger EventLister
	clock  clock.Clock
}

func NewCalendarHandler(l EventLister, c clock.Clock) *CalendarHandler {
	return &CalendarHandler{ledger: l, clock: c}
}

type monthResponse struct {
	Year     int                 `json:"year"`
	Month    int                 `json:"month"`
	Weekdays []string            `json:"weekdays"`
	Selected int                 `json:"selected"`
	Days     []model.CalendarDay `json:"days"`
}

// Month serves the 42-cell grid for ?year=&month=, defaulting to the current
// month.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	today := clock.Today(h.clock)
	year, month := today.Year(), today.Month()

	q := r.URL.Query()
	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			writeMessage(w, http.StatusBadRequest, "year must be between 1 and 9999")
			return
		}
		year = y
	}
	if s := q.Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			writeMessage(w, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}
		month = time.Month(m)
	}

	days := calendar.Build(year, month, h.ledger.List(), today)

	weekdays := make([]string, len(calendar.Weekdays))
	for i, d := range calendar.Weekdays {
		weekdays[i] = d.String()
	}

	writeJSON(w, http.StatusOK, monthResponse{
		Year:     year,
		Month:    int(month),
		Weekdays: weekdays,
		Selected: calendar.DefaultSelection(days),
		Days:     days,
	})
}

// ICS serves the whole ledger as an iCalendar feed.
func (h *CalendarHandler) ICS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.Write([]byte(calendar.ExportICS(h.ledger.List(), h.clock.Now())))
}
