package calendar

import (
	"testing"
	"time"

	"github.com/dukerupert/eventledger/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildAlwaysFortyTwoCells(t *testing.T) {
	for year := 2023; year <= 2028; year++ {
		for month := time.January; month <= time.December; month++ {
			grid := Build(year, month, nil, day(2026, 1, 1))
			if len(grid) != GridCells {
				t.Fatalf("%d-%02d: len = %d, want %d", year, month, len(grid), GridCells)
			}

			current := 0
			for _, c := range grid {
				if c.IsCurrentMonth {
					current++
				}
			}
			if want := DaysIn(year, month); current != want {
				t.Errorf("%d-%02d: current-month cells = %d, want %d", year, month, current, want)
			}

			// Monday-first: column 0 is always a Monday.
			first, err := time.Parse(model.DateLayout, grid[0].Date)
			if err != nil {
				t.Fatalf("parse %q: %v", grid[0].Date, err)
			}
			if first.Weekday() != time.Monday {
				t.Errorf("%d-%02d: first cell is %s, want Monday", year, month, first.Weekday())
			}
		}
	}
}

func TestBuildLeadingCells(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		leading int
		first   string
	}{
		// 2026-02-01 is a Sunday.
		{"starts sunday", 2026, time.February, 6, "2026-01-26"},
		// 2026-06-01 is a Monday.
		{"starts monday", 2026, time.June, 0, "2026-06-01"},
		// 2026-10-01 is a Thursday.
		{"starts thursday", 2026, time.October, 3, "2026-09-28"},
		// 2024-03-01 is a Friday; leap February precedes it.
		{"after leap february", 2024, time.March, 4, "2024-02-26"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := Build(tt.year, tt.month, nil, day(2000, 1, 1))
			if grid[0].Date != tt.first {
				t.Errorf("first cell = %s, want %s", grid[0].Date, tt.first)
			}
			for i := 0; i < tt.leading; i++ {
				if grid[i].IsCurrentMonth {
					t.Errorf("cell %d should be filler", i)
				}
			}
			if !grid[tt.leading].IsCurrentMonth || grid[tt.leading].Day != 1 {
				t.Errorf("cell %d = %+v, want day 1 of month", tt.leading, grid[tt.leading])
			}
		})
	}
}

func TestBuildTrailingCellsContinueIntoNextMonth(t *testing.T) {
	grid := Build(2026, time.February, nil, day(2000, 1, 1))
	// 6 leading + 28 days = 34, so 8 trailing cells from 2026-03-01.
	if grid[34].Date != "2026-03-01" {
		t.Errorf("cell 34 = %s, want 2026-03-01", grid[34].Date)
	}
	if grid[41].Date != "2026-03-08" {
		t.Errorf("cell 41 = %s, want 2026-03-08", grid[41].Date)
	}
	if grid[41].IsCurrentMonth {
		t.Error("trailing cell should not be current month")
	}
}

func TestBuildIsToday(t *testing.T) {
	grid := Build(2026, time.October, nil, day(2026, 10, 16))

	count := 0
	for _, c := range grid {
		if c.IsToday {
			count++
			if c.Date != "2026-10-16" {
				t.Errorf("today cell = %s, want 2026-10-16", c.Date)
			}
		}
	}
	if count != 1 {
		t.Errorf("today cells = %d, want 1", count)
	}

	// Today falls on a filler cell of the November grid but must not be flagged.
	nov := Build(2026, time.November, nil, day(2026, 10, 27))
	for _, c := range nov {
		if c.IsToday {
			t.Errorf("filler cell %s should not be today", c.Date)
		}
	}
}

func TestBuildBucketsAndSortsEvents(t *testing.T) {
	events := []model.Event{
		{ID: "late", Date: "2026-10-16", StartTime: "15:00", EndTime: "16:00"},
		{ID: "early", Date: "2026-10-16", StartTime: "08:30", EndTime: "09:00"},
		{ID: "mid", Date: "2026-10-16", StartTime: "10:00", EndTime: "11:00"},
		{ID: "filler", Date: "2026-09-28", StartTime: "09:00", EndTime: "10:00"},
		{ID: "outside", Date: "2027-01-01", StartTime: "09:00", EndTime: "10:00"},
	}

	grid := Build(2026, time.October, events, day(2026, 10, 16))

	var placed int
	for _, c := range grid {
		placed += len(c.Events)
		for i := 1; i < len(c.Events); i++ {
			if c.Events[i-1].StartTime > c.Events[i].StartTime {
				t.Errorf("%s: events not sorted: %s before %s", c.Date, c.Events[i-1].StartTime, c.Events[i].StartTime)
			}
		}
	}
	if placed != 4 {
		t.Errorf("placed events = %d, want 4", placed)
	}

	// 2026-10-01 is a Thursday: 3 leading cells, so the 16th is index 18.
	got := grid[18]
	if got.Date != "2026-10-16" {
		t.Fatalf("cell 18 = %s, want 2026-10-16", got.Date)
	}
	ids := []string{got.Events[0].ID, got.Events[1].ID, got.Events[2].ID}
	want := []string{"early", "mid", "late"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, ids[i], want[i])
		}
	}

	if len(grid[0].Events) != 1 || grid[0].Events[0].ID != "filler" {
		t.Errorf("filler cell events = %+v, want [filler]", grid[0].Events)
	}
	if events[0].ID != "late" {
		t.Error("input events must not be reordered")
	}
}

func TestBuildEmptyCellsHaveNonNilEvents(t *testing.T) {
	for _, c := range Build(2026, time.October, nil, day(2026, 10, 16)) {
		if c.Events == nil {
			t.Fatalf("%s: events is nil", c.Date)
		}
	}
}

func TestDefaultSelection(t *testing.T) {
	grid := Build(2026, time.October, nil, day(2026, 10, 16))
	if got := DefaultSelection(grid); grid[got].Date != "2026-10-16" {
		t.Errorf("selection = %s, want today", grid[got].Date)
	}

	other := Build(2026, time.December, nil, day(2026, 10, 16))
	if got := DefaultSelection(other); other[got].Date != "2026-12-01" {
		t.Errorf("selection = %s, want first of month", other[got].Date)
	}

	if got := DefaultSelection(nil); got != -1 {
		t.Errorf("selection on empty grid = %d, want -1", got)
	}
}
