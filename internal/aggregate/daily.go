// Package aggregate turns raw transaction records and inventory lists into
// the figures the dashboard shows.
package aggregate

import (
	"fmt"
	"time"

	"github.com/erazemk/zaloga/internal/model"
)

// All selects every kind or every subject in a Filter.
const All = ""

// Filter scopes a daily series to one calendar month, optionally to one
// transaction kind and one subject.
type Filter struct {
	Month   int
	Year    int
	Kind    model.Kind
	Subject string
}

// Validate reports whether the filter names a real month and kind.
func (f Filter) Validate() error {
	if f.Month < 1 || f.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", f.Month)
	}
	if f.Kind != All {
		if _, ok := model.ParseKind(string(f.Kind)); !ok {
			return fmt.Errorf("unknown transaction type %q", f.Kind)
		}
	}
	return nil
}

// Day is one entry of a daily series.
type Day struct {
	Day      int     `json:"day"`
	Count    int     `json:"count"`
	Quantity float64 `json:"quantity"`
}

// DaysIn returns the number of days in the month, accounting for leap
// years. It returns 0 for a month outside 1..12.
func DaysIn(month, year int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// match returns the day of month the record contributes to, or false.
func (f Filter) match(rec model.TransactionRecord) (int, bool) {
	t, ok := model.ParseTimestamp(rec.Timestamp)
	if !ok {
		return 0, false
	}
	if int(t.Month()) != f.Month || t.Year() != f.Year {
		return 0, false
	}
	if f.Kind != All && rec.Kind != f.Kind {
		return 0, false
	}
	if f.Subject != All && rec.SubjectID != f.Subject {
		return 0, false
	}
	return t.Day(), true
}

// Daily builds the zero-filled per-day series for the filter's month: one
// entry per calendar day in ascending order. Records with unparseable
// timestamps are skipped and unusable quantities count as 0. A filter with
// an invalid month yields an empty series.
func Daily(records []model.TransactionRecord, f Filter) []Day {
	days := make([]Day, DaysIn(f.Month, f.Year))
	for i := range days {
		days[i].Day = i + 1
	}

	for _, rec := range records {
		d, ok := f.match(rec)
		if !ok {
			continue
		}
		days[d-1].Count++
		days[d-1].Quantity += rec.Quantity.Contribution()
	}
	return days
}

// Totals sums a series.
func Totals(days []Day) (count int, quantity float64) {
	for _, d := range days {
		count += d.Count
		quantity += d.Quantity
	}
	return count, quantity
}

// Peak returns the largest count and quantity of a series.
func Peak(days []Day) (count int, quantity float64) {
	for _, d := range days {
		count = max(count, d.Count)
		quantity = max(quantity, d.Quantity)
	}
	return count, quantity
}
