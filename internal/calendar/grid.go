package calendar

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dukerupert/eventledger/internal/model"
)

// GridCells is the fixed size of a month grid: six Monday-first weeks.
const GridCells = 42

// Weekdays are the grid's column headings in order.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Build projects events onto the 42-cell grid for year/month. Leading cells
// are the tail of the previous month and trailing cells the head of the next;
// events land on whichever cell carries their date, filler cells included.
// Each cell's events are ordered by startTime. Build has no side effects.
func Build(year int, month time.Month, events []model.Event, today time.Time) []model.CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	totalDays := DaysIn(year, month)

	leading := int(first.Weekday()) - 1
	if first.Weekday() == time.Sunday {
		leading = 6
	}

	todayKey := today.Format(model.DateLayout)
	grid := make([]model.CalendarDay, 0, GridCells)

	for i := leading; i > 0; i-- {
		grid = append(grid, cell(first.AddDate(0, 0, -i), false, false))
	}
	for d := 1; d <= totalDays; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		grid = append(grid, cell(date, true, date.Format(model.DateLayout) == todayKey))
	}
	next := first.AddDate(0, 1, 0)
	for i := 0; len(grid) < GridCells; i++ {
		grid = append(grid, cell(next.AddDate(0, 0, i), false, false))
	}

	byDate := lo.GroupBy(events, func(e model.Event) string { return e.Date })
	for i := range grid {
		bucket, ok := byDate[grid[i].Date]
		if !ok {
			continue
		}
		grid[i].Events = slices.Clone(bucket)
		slices.SortStableFunc(grid[i].Events, func(a, b model.Event) int {
			return strings.Compare(a.StartTime, b.StartTime)
		})
	}

	return grid
}

func cell(date time.Time, current, today bool) model.CalendarDay {
	return model.CalendarDay{
		Date:           date.Format(model.DateLayout),
		Day:            date.Day(),
		IsCurrentMonth: current,
		IsToday:        today,
		Events:         []model.Event{},
	}
}

// DefaultSelection picks the cell a month view opens on: today when today is
// in the displayed month, else the first day of the month. Whether the cell
// has events does not matter. It returns -1 for a grid with no current-month
// cells.
func DefaultSelection(grid []model.CalendarDay) int {
	if i := slices.IndexFunc(grid, func(d model.CalendarDay) bool { return d.IsToday && d.IsCurrentMonth }); i >= 0 {
		return i
	}
	return slices.IndexFunc(grid, func(d model.CalendarDay) bool { return d.IsCurrentMonth })
}
