package models

// Period is a reported date window as YYYY-MM-DD strings. An empty string
// means the bound is unknown.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Meta accompanies list responses.
type Meta struct {
	Total       int     `json:"total"`
	Limit       *int    `json:"limit,omitempty"`
	Offset      *int    `json:"offset,omitempty"`
	Granularity string  `json:"granularity,omitempty"`
	Period      *Period `json:"period,omitempty"`
}

type TimeSeriesPoint struct {
	Period       string  `json:"period"`
	TotalRevenue int64   `json:"total_revenue"`
	AvgSale      float64 `json:"avg_sale"`
	SaleCount    int64   `json:"sale_count"`
	MinSale      int64   `json:"min_sale"`
	MaxSale      int64   `json:"max_sale"`
}

type UserPerformance struct {
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	TotalRevenue int64   `json:"total_revenue"`
	AvgSale      float64 `json:"avg_sale"`
	SaleCount    int64   `json:"sale_count"`
	MinSale      int64   `json:"min_sale"`
	MaxSale      int64   `json:"max_sale"`
}

// UserPage is one page of user performance rows plus the number of users
// matching the filters across all pages.
type UserPage struct {
	Users []UserPerformance
	Total int
}

type GroupPerformance struct {
	GroupID      int64   `json:"group_id"`
	Name         string  `json:"name"`
	TotalRevenue int64   `json:"total_revenue"`
	AvgSale      float64 `json:"avg_sale"`
	SaleCount    int64   `json:"sale_count"`
	MinSale      int64   `json:"min_sale"`
	MaxSale      int64   `json:"max_sale"`
	MemberCount  int64   `json:"member_count"`
}

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	TotalRevenue int64  `json:"total_revenue"`
	SaleCount    int64  `json:"sale_count"`
}

type Summary struct {
	TotalRevenue int64   `json:"total_revenue"`
	SaleCount    int64   `json:"sale_count"`
	AvgSale      float64 `json:"avg_sale"`
	MinSale      int64   `json:"min_sale"`
	MaxSale      int64   `json:"max_sale"`
	ActiveUsers  int64   `json:"active_users"`
	Period       Period  `json:"period"`
}

type PeriodMetrics struct {
	Period       Period  `json:"period"`
	TotalRevenue int64   `json:"total_revenue"`
	SaleCount    int64   `json:"sale_count"`
	AvgSale      float64 `json:"avg_sale"`
}

// Change holds percentage changes from the previous to the current period.
type Change struct {
	TotalRevenue float64 `json:"total_revenue"`
	SaleCount    float64 `json:"sale_count"`
	AvgSale      float64 `json:"avg_sale"`
}

type PeriodComparison struct {
	Current  PeriodMetrics `json:"current"`
	Previous PeriodMetrics `json:"previous"`
	Change   Change        `json:"change"`
}
