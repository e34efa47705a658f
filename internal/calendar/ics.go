package calendar

import (
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dukerupert/eventledger/internal/model"
)

const (
	productID = "-//eventledger//ledger export//EN"
	// Floating local time: ledger times carry no zone.
	floatingLayout = "20060102T150405"
)

var (
	propOrganizerName = ical.ComponentProperty("X-ORGANIZER-NAME")
	propCapacity      = ical.ComponentProperty("X-CAPACITY")
	propRegistered    = ical.ComponentProperty("X-REGISTERED")
)

// ExportICS renders events as an iCalendar feed. Events whose span cannot be
// parsed are skipped.
func ExportICS(events []model.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		start, err := time.Parse(model.DateLayout+" "+model.TimeLayout, e.Date+" "+e.StartTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(model.DateLayout+" "+model.TimeLayout, e.Date+" "+e.EndTime)
		if err != nil {
			continue
		}

		ev := cal.AddEvent(e.ID)
		ev.SetDtStampTime(now.UTC())
		ev.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
		ev.SetProperty(ical.ComponentPropertyDtEnd, end.Format(floatingLayout))
		ev.SetSummary(e.Name)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		ev.SetLocation(e.Location)
		ev.SetProperty(propOrganizerName, e.Organizer)
		ev.SetProperty(propCapacity, strconv.Itoa(e.Capacity))
		ev.SetProperty(propRegistered, strconv.Itoa(e.RegisteredParticipants))
	}

	return cal.Serialize()
}
