package grid

import "time"

// Date range filter keys and the named period filter understood by the backend.
const (
	DateFromKey  = "fecha_from"
	DateToKey    = "fecha_to"
	DateRangeKey = "fecha"
	NamedPeriod  = "periodo"
)

const dateLayout = "2006-01-02"

// Period is a named relative date range.
type Period struct {
	Name  string
	Label string
	// Resolve returns the inclusive first and last day of the range around now.
	Resolve func(now time.Time) (from, to time.Time)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

var Periods = []Period{
	{
		Name:  "this_month",
		Label: "This month",
		Resolve: func(now time.Time) (time.Time, time.Time) {
			from := startOfMonth(now)
			return from, from.AddDate(0, 1, -1)
		},
	},
	{
		Name:  "last_month",
		Label: "Last month",
		Resolve: func(now time.Time) (time.Time, time.Time) {
			from := startOfMonth(now).AddDate(0, -1, 0)
			return from, from.AddDate(0, 1, -1)
		},
	},
	{
		Name:  "this_quarter",
		Label: "This quarter",
		Resolve: func(now time.Time) (time.Time, time.Time) {
			q := (int(now.Month()) - 1) / 3
			from := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, now.Location())
			return from, from.AddDate(0, 3, -1)
		},
	},
	{
		Name:  "this_year",
		Label: "This year",
		Resolve: func(now time.Time) (time.Time, time.Time) {
			from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
			return from, from.AddDate(1, 0, -1)
		},
	},
	{
		Name:  "last_year",
		Label: "Last year",
		Resolve: func(now time.Time) (time.Time, time.Time) {
			from := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
			return from, from.AddDate(1, 0, -1)
		},
	},
	{
		Name:  "last_30_days",
		Label: "Last 30 days",
		Resolve: func(now time.Time) (time.Time, time.Time) {
			to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			return to.AddDate(0, 0, -29), to
		},
	},
}

// FindPeriod looks a period up by name.
func FindPeriod(name string) (Period, bool) {
	for _, p := range Periods {
		if p.Name == name {
			return p, true
		}
	}
	return Period{}, false
}

// PeriodLabel is the display label for a named period, or the name itself.
func PeriodLabel(name string) string {
	if p, ok := FindPeriod(name); ok {
		return p.Label
	}
	return name
}
