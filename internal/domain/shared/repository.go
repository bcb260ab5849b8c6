package shared

import "time"

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "date",
		OrderDir: "desc",
	}
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// DateRange is a half-open [From, To) interval. Zero bounds are unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// CurrentMonth returns the range from the first day of now's month (inclusive), unbounded above
func CurrentMonth(now time.Time) DateRange {
	return DateRange{From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())}
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) DateRange {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return DateRange{From: from, To: from.AddDate(0, 1, 0)}
}
