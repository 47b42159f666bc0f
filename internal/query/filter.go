package query

import "time"

type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// Granularities lists the accepted bucket widths in ascending order.
var Granularities = []Granularity{Day, Week, Month, Quarter, Year}

// Range is an inclusive calendar date window. A nil bound is open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

type TimeSeriesFilter struct {
	Range
	Granularity Granularity
	UserID      *int64
	GroupID     *int64
}

type UsersFilter struct {
	Range
	GroupID *int64
	Limit   *int
	Offset  *int
}

type GroupsFilter struct {
	Range
}

type LeaderboardFilter struct {
	Range
	GroupID *int64
	Limit   int
}

type SummaryFilter struct {
	Range
}

type CompareFilter struct {
	Current  Range
	Previous Range
}
