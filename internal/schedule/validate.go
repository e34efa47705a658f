package schedule

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/eventledger/internal/model"
)

var validate = newValidator()

// hhmm is a zero-padded 24-hour time. time.Parse alone accepts "9:00".
var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmm.MatchString(fl.Field().String())
	})
	return v
}

// Normalize trims the display strings of a candidate.
func Normalize(c model.NewEvent) model.NewEvent {
	c.Name = strings.TrimSpace(c.Name)
	c.Organizer = strings.TrimSpace(c.Organizer)
	c.Location = strings.TrimSpace(c.Location)
	c.Date = strings.TrimSpace(c.Date)
	c.StartTime = strings.TrimSpace(c.StartTime)
	c.EndTime = strings.TrimSpace(c.EndTime)
	return c
}

// CheckFields validates the non-temporal shape of a candidate: required
// display strings, date and time layouts, positive capacity.
func CheckFields(c model.NewEvent) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid("%v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid("%s is required", fe.Field())
	case "datetime":
		return invalid("%s must use layout %s", fe.Field(), fe.Param())
	case "hhmm":
		return invalid("%s must be a zero-padded HH:MM time", fe.Field())
	case "gte":
		return invalid("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return invalid("%s is invalid", fe.Field())
	}
}

// Span resolves a date and a pair of HH:MM times to instants. Times carry no
// zone; UTC is used only as a neutral frame for comparison.
func Span(date, start, end string) (time.Time, time.Time, error) {
	const layout = model.DateLayout + " " + model.TimeLayout
	if !hhmm.MatchString(start) {
		return time.Time{}, time.Time{}, invalid("invalid start %q on %q", start, date)
	}
	if !hhmm.MatchString(end) {
		return time.Time{}, time.Time{}, invalid("invalid end %q on %q", end, date)
	}
	s, err := time.ParseInLocation(layout, date+" "+start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("invalid start %q on %q", start, date)
	}
	e, err := time.ParseInLocation(layout, date+" "+end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("invalid end %q on %q", end, date)
	}
	return s, e, nil
}

// Validate decides whether a candidate can join existing. The span check runs
// before any clash comparison. Every stored event is compared regardless of
// location, in storage order, and the first overlap wins.
func Validate(c model.NewEvent, existing []model.Event) error {
	return ValidateExcept(c, existing, "")
}

// ValidateExcept is Validate ignoring the event with id skip, for updates of
// an already stored event.
func ValidateExcept(c model.NewEvent, existing []model.Event, skip string) error {
	start, end, err := Span(c.Date, c.StartTime, c.EndTime)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return invalid("end time must be after start time")
	}

	for _, e := range existing {
		if skip != "" && e.ID == skip {
			continue
		}
		eStart, eEnd, err := Span(e.Date, e.StartTime, e.EndTime)
		if err != nil {
			// Unparseable stored spans cannot overlap anything.
			continue
		}
		if start.Before(eEnd) && eStart.Before(end) {
			return &ClashError{Conflict: e}
		}
	}
	return nil
}
