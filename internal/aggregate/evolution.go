package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// Granularity selects the evolution bucket size
type Granularity int

const (
	// ByHour buckets mentions by date and clock hour
	ByHour Granularity = iota
	// ByDate buckets mentions by calendar date
	ByDate
)

// Layouts are the Go time layouts of the export's date and time columns
type Layouts struct {
	Date string
	Time string
}

// DefaultLayouts matches "05-Mar-24" and "3:15 PM"
func DefaultLayouts() Layouts {
	return Layouts{Date: "02-Jan-06", Time: "3:04 PM"}
}

const (
	dateLabel = "02-Jan"
	hourLabel = "02-Jan 03 PM"
)

// Evolution counts mentions per time bucket, ascending by time.
// Rows whose date (or time, for hourly buckets) cannot be parsed are skipped
// and counted in the second return value.
func Evolution(records []model.Record, g Granularity, layouts Layouts) ([]model.SeriesPoint, int) {
	if layouts.Date == "" || layouts.Time == "" {
		def := DefaultLayouts()
		if layouts.Date == "" {
			layouts.Date = def.Date
		}
		if layouts.Time == "" {
			layouts.Time = def.Time
		}
	}

	counts := make(map[time.Time]int)
	skipped := 0
	for _, r := range records {
		at, ok := bucket(r, g, layouts)
		if !ok {
			skipped++
			continue
		}
		counts[at]++
	}

	points := make([]model.SeriesPoint, 0, len(counts))
	for at, n := range counts {
		label := at.Format(dateLabel)
		if g == ByHour {
			label = at.Format(hourLabel)
		}
		points = append(points, model.SeriesPoint{Label: label, At: at, Count: n})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].At.Before(points[j].At)
	})

	return points, skipped
}

func bucket(r model.Record, g Granularity, layouts Layouts) (time.Time, bool) {
	day, err := time.Parse(layouts.Date, strings.TrimSpace(r.Date))
	if err != nil {
		return time.Time{}, false
	}
	if g == ByDate {
		return day, true
	}

	clock, err := time.Parse(layouts.Time, strings.TrimSpace(r.Time))
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(clock.Hour()) * time.Hour), true
}
