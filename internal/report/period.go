package report

import "time"

// Analysis period presets offered by the UI.
const (
	PeriodLast30Days = "30d"
	PeriodThisMonth  = "month"
	PeriodLast3M     = "3m"
	PeriodLast6M     = "6m"
	PeriodThisYear   = "year"
	PeriodAllTime    = "all"
)

// allTimeStart is the open-ended lower bound for the "All Time" preset.
var allTimeStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PeriodRange maps a preset to a concrete [start, end] date range ending
// today. Unknown presets fall back to the current month.
func PeriodRange(period string, now time.Time) (start, end time.Time) {
	now = now.UTC()
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch period {
	case PeriodLast30Days:
		start = end.AddDate(0, 0, -30)
	case PeriodLast3M:
		start = firstOfMonth.AddDate(0, -3, 0)
	case PeriodLast6M:
		start = firstOfMonth.AddDate(0, -6, 0)
	case PeriodThisYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case PeriodAllTime:
		start = allTimeStart
	default:
		start = firstOfMonth
	}
	return start, end
}
