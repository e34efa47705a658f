// Command calgrid prints one month of the event calendar as a table.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/dukerupert/eventledger/internal/backup"
	"github.com/dukerupert/eventledger/internal/calendar"
	"github.com/dukerupert/eventledger/internal/clock"
	"github.com/dukerupert/eventledger/internal/config"
	"github.com/dukerupert/eventledger/internal/database"
	"github.com/dukerupert/eventledger/internal/ledger"
	"github.com/dukerupert/eventledger/internal/logging"
	"github.com/dukerupert/eventledger/internal/model"
	"github.com/dukerupert/eventledger/internal/store"
)

func main() {
	today := clock.Today(clock.System())

	year := flag.Int("year", today.Year(), "calendar year")
	month := flag.Int("month", int(today.Month()), "calendar month (1-12)")
	backupPath := flag.String("backup", "", "read events from an encrypted backup instead of the live ledger")
	passphrase := flag.String("passphrase", os.Getenv("EVENTLEDGER_BACKUP_PASSPHRASE"), "backup passphrase")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	if *month < 1 || *month > 12 {
		fmt.Fprintln(os.Stderr, "calgrid: -month must be between 1 and 12")
		os.Exit(2)
	}
	if *noColor {
		color.Disable()
	}

	events, err := loadEvents(*backupPath, *passphrase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calgrid: %v\n", err)
		os.Exit(1)
	}

	render(os.Stdout, *year, time.Month(*month), events, today)
}

func loadEvents(backupPath, passphrase string) ([]model.Event, error) {
	if backupPath != "" {
		return backup.ReadEvents(backupPath, passphrase)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, "warn", cfg.LogFormat)

	if cfg.Storage == config.StorageBadger {
		db, err := store.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return ledger.Open(store.NewBadgerSlotStore(db, cfg.Slot), logger).List(), nil
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return ledger.Open(store.NewSlotStore(db, cfg.Slot), logger).List(), nil
}

// render writes the month as six rows of seven days.
func render(w io.Writer, year int, month time.Month, events []model.Event, today time.Time) {
	grid := calendar.Build(year, month, events, today)

	fmt.Fprintf(w, "%s %d\n", month, year)

	header := make([]string, len(calendar.Weekdays))
	for i, d := range calendar.Weekdays {
		header[i] = d.String()[:3]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)

	for week := 0; week < calendar.GridCells/7; week++ {
		row := make([]string, 7)
		for i, day := range grid[week*7 : week*7+7] {
			row[i] = cellText(day)
		}
		table.Append(row)
	}
	table.Render()
}

func cellText(day model.CalendarDay) string {
	label := fmt.Sprintf("%2d", day.Day)
	switch {
	case day.IsToday:
		label = color.New(color.FgGreen, color.OpBold).Render(label)
	case !day.IsCurrentMonth:
		label = color.Gray.Render(label)
	}

	text := label
	for _, e := range day.Events {
		text += fmt.Sprintf("\n%s %s %d/%d", e.StartTime, e.Name, e.RegisteredParticipants, e.Capacity)
	}
	return text
}
