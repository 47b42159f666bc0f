package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sales-analytics/internal/models"
	"sales-analytics/internal/query"
	"sales-analytics/internal/store"
	"sales-analytics/internal/testutil"
)

func newTestReports(t *testing.T) *Reports {
	t.Helper()

	db := testutil.NewDB(t)
	testutil.MustLoad(t, db, testutil.Fixture(t))
	return NewReports(db, testutil.DiscardLogger())
}

func datePtr(t *testing.T, s string) *time.Time {
	d := testutil.Date(t, s)
	return &d
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func TestTimeSeries_Monthly(t *testing.T) {
	r := newTestReports(t)

	points, err := r.TimeSeries(context.Background(), query.TimeSeriesFilter{Granularity: query.Month})
	if err != nil {
		t.Fatalf("TimeSeries() error = %v", err)
	}

	want := []models.TimeSeriesPoint{
		{Period: "2024-01-01", TotalRevenue: 650, AvgSale: 216.67, SaleCount: 3, MinSale: 100, MaxSale: 300},
		{Period: "2024-02-01", TotalRevenue: 600, AvgSale: 300, SaleCount: 2, MinSale: 200, MaxSale: 400},
		{Period: "2024-03-01", TotalRevenue: 50, AvgSale: 50, SaleCount: 1, MinSale: 50, MaxSale: 50},
	}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d: %+v", len(points), len(want), points)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
}

func TestTimeSeries_WeeksStartMonday(t *testing.T) {
	r := newTestReports(t)

	points, err := r.TimeSeries(context.Background(), query.TimeSeriesFilter{Granularity: query.Week})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]int64{
		"2024-01-08": 100,
		"2024-01-15": 550,
		"2024-02-05": 600,
		"2024-02-26": 50,
	}
	if len(points) != len(want) {
		t.Fatalf("got %d weeks: %+v", len(points), points)
	}
	for _, p := range points {
		if want[p.Period] != p.TotalRevenue {
			t.Errorf("week %s total = %d, want %d", p.Period, p.TotalRevenue, want[p.Period])
		}
		if d, _ := time.Parse("2006-01-02", p.Period); d.Weekday() != time.Monday {
			t.Errorf("week bucket %s is a %s", p.Period, d.Weekday())
		}
	}
}

func TestTimeSeries_Filters(t *testing.T) {
	r := newTestReports(t)
	ctx := context.Background()

	byGroup, err := r.TimeSeries(ctx, query.TimeSeriesFilter{Granularity: query.Quarter, GroupID: int64Ptr(1)})
	if err != nil {
		t.Fatal(err)
	}
	if len(byGroup) != 1 || byGroup[0].Period != "2024-01-01" || byGroup[0].TotalRevenue != 900 {
		t.Errorf("group 1 by quarter = %+v", byGroup)
	}

	byUser, err := r.TimeSeries(ctx, query.TimeSeriesFilter{
		Granularity: query.Day,
		UserID:      int64Ptr(1),
		Range:       query.Range{Start: datePtr(t, "2024-01-15"), End: datePtr(t, "2024-02-05")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(byUser) != 2 || byUser[0].Period != "2024-01-20" || byUser[1].Period != "2024-02-05" {
		t.Errorf("user 1 by day = %+v", byUser)
	}
}

func TestTimeSeries_Empty(t *testing.T) {
	r := newTestReports(t)

	points, err := r.TimeSeries(context.Background(), query.TimeSeriesFilter{
		Granularity: query.Year,
		Range:       query.Range{Start: datePtr(t, "2030-01-01")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if points == nil || len(points) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", points)
	}
}

func TestTimeSeries_TotalsMatchSummary(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.MustLoad(t, db, store.GenerateSeedData(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 400))
	r := NewReports(db, testutil.DiscardLogger())
	ctx := context.Background()

	summary, err := r.Summary(ctx, query.SummaryFilter{})
	if err != nil {
		t.Fatal(err)
	}

	for _, g := range query.Granularities {
		points, err := r.TimeSeries(ctx, query.TimeSeriesFilter{Granularity: g})
		if err != nil {
			t.Fatal(err)
		}

		var revenue, count int64
		for _, p := range points {
			revenue += p.TotalRevenue
			count += p.SaleCount
		}
		if revenue != summary.TotalRevenue || count != summary.SaleCount {
			t.Errorf("%s: buckets sum to %d/%d, summary has %d/%d",
				g, revenue, count, summary.TotalRevenue, summary.SaleCount)
		}
	}
}

func TestUserPerformance(t *testing.T) {
	r := newTestReports(t)
	ctx := context.Background()

	page, err := r.UserPerformance(ctx, query.UsersFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Users) != 3 {
		t.Fatalf("page = %+v", page)
	}

	alice := page.Users[0]
	want := models.UserPerformance{UserID: 1, Name: "Alice", Role: "manager", TotalRevenue: 600,
		AvgSale: 200, SaleCount: 3, MinSale: 100, MaxSale: 300}
	if alice != want {
		t.Errorf("first user = %+v, want %+v", alice, want)
	}
	if page.Users[1].UserID != 3 || page.Users[2].UserID != 2 {
		t.Errorf("order = %d,%d,%d", page.Users[0].UserID, page.Users[1].UserID, page.Users[2].UserID)
	}

	t.Run("paginated", func(t *testing.T) {
		page, err := r.UserPerformance(ctx, query.UsersFilter{Limit: intPtr(1), Offset: intPtr(1)})
		if err != nil {
			t.Fatal(err)
		}
		if page.Total != 3 || len(page.Users) != 1 || page.Users[0].Name != "Carol" {
			t.Errorf("page = %+v", page)
		}
	})

	t.Run("offset past last user", func(t *testing.T) {
		page, err := r.UserPerformance(ctx, query.UsersFilter{Offset: intPtr(1000)})
		if err != nil {
			t.Fatal(err)
		}
		if page.Total != 3 || page.Users == nil || len(page.Users) != 0 {
			t.Errorf("page = %+v, want empty users with total 3", page)
		}

		page, err = r.UserPerformance(ctx, query.UsersFilter{GroupID: int64Ptr(2), Limit: intPtr(10), Offset: intPtr(5)})
		if err != nil {
			t.Fatal(err)
		}
		if page.Total != 2 || len(page.Users) != 0 {
			t.Errorf("group page = %+v, want empty users with total 2", page)
		}
	})

	t.Run("group and dates", func(t *testing.T) {
		page, err := r.UserPerformance(ctx, query.UsersFilter{
			GroupID: int64Ptr(2),
			Range:   query.Range{End: datePtr(t, "2024-02-29")},
		})
		if err != nil {
			t.Fatal(err)
		}
		if page.Total != 2 || page.Users[0].Name != "Carol" || page.Users[1].TotalRevenue != 250 {
			t.Errorf("page = %+v", page)
		}
	})
}

func TestGroupPerformance(t *testing.T) {
	r := newTestReports(t)

	groups, err := r.GroupPerformance(context.Background(), query.GroupsFilter{})
	if err != nil {
		t.Fatal(err)
	}

	want := []models.GroupPerformance{
		{GroupID: 1, Name: "North", TotalRevenue: 900, AvgSale: 180, SaleCount: 5, MinSale: 50, MaxSale: 300, MemberCount: 2},
		{GroupID: 2, Name: "South", TotalRevenue: 700, AvgSale: 233.33, SaleCount: 3, MinSale: 50, MaxSale: 400, MemberCount: 2},
	}
	if len(groups) != len(want) {
		t.Fatalf("groups = %+v", groups)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("group %d = %+v, want %+v", i, groups[i], want[i])
		}
	}
}

func TestLeaderboard(t *testing.T) {
	r := newTestReports(t)

	entries, err := r.Leaderboard(context.Background(), query.LeaderboardFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}

	want := []models.LeaderboardEntry{
		{Rank: 1, UserID: 1, Name: "Alice", TotalRevenue: 600, SaleCount: 3},
		{Rank: 2, UserID: 3, Name: "Carol", TotalRevenue: 400, SaleCount: 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestLeaderboard_TiesBrokenByUserID(t *testing.T) {
	db := testutil.NewDB(t)
	data := testutil.Fixture(t)
	// Bob reaches 400, level with Carol.
	data.Sales = append(data.Sales, models.Sale{ID: 7, UserID: 2, Amount: 100, Date: testutil.Date(t, "2024-03-02")})
	testutil.MustLoad(t, db, data)
	r := NewReports(db, testutil.DiscardLogger())

	entries, err := r.Leaderboard(context.Background(), query.LeaderboardFilter{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[1].UserID != 2 || entries[2].UserID != 3 {
		t.Errorf("tie order = %d then %d, want 2 then 3", entries[1].UserID, entries[2].UserID)
	}
	if entries[1].Rank != 2 || entries[2].Rank != 3 {
		t.Errorf("ranks = %d, %d", entries[1].Rank, entries[2].Rank)
	}
}

func TestSummary(t *testing.T) {
	r := newTestReports(t)
	ctx := context.Background()

	s, err := r.Summary(ctx, query.SummaryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	want := models.Summary{
		TotalRevenue: 1300, SaleCount: 6, AvgSale: 216.67, MinSale: 50, MaxSale: 400, ActiveUsers: 3,
		Period: models.Period{Start: "2024-01-10", End: "2024-03-01"},
	}
	if s != want {
		t.Errorf("summary = %+v, want %+v", s, want)
	}

	t.Run("explicit start wins", func(t *testing.T) {
		s, err := r.Summary(ctx, query.SummaryFilter{Range: query.Range{Start: datePtr(t, "2024-02-01")}})
		if err != nil {
			t.Fatal(err)
		}
		if s.TotalRevenue != 650 || s.SaleCount != 3 {
			t.Errorf("summary = %+v", s)
		}
		if s.Period != (models.Period{Start: "2024-02-01", End: "2024-03-01"}) {
			t.Errorf("period = %+v", s.Period)
		}
	})

	t.Run("no matching sales", func(t *testing.T) {
		s, err := r.Summary(ctx, query.SummaryFilter{Range: query.Range{Start: datePtr(t, "2030-01-01")}})
		if err != nil {
			t.Fatal(err)
		}
		want := models.Summary{Period: models.Period{Start: "2030-01-01", End: ""}}
		if s != want {
			t.Errorf("summary = %+v, want zero values", s)
		}
	})
}

func TestCompare(t *testing.T) {
	r := newTestReports(t)
	ctx := context.Background()

	c, err := r.Compare(ctx, query.CompareFilter{
		Current:  query.Range{Start: datePtr(t, "2024-02-01"), End: datePtr(t, "2024-02-29")},
		Previous: query.Range{Start: datePtr(t, "2024-01-01"), End: datePtr(t, "2024-01-31")},
	})
	if err != nil {
		t.Fatal(err)
	}

	wantCurrent := models.PeriodMetrics{
		Period:       models.Period{Start: "2024-02-01", End: "2024-02-29"},
		TotalRevenue: 600, SaleCount: 2, AvgSale: 300,
	}
	wantPrevious := models.PeriodMetrics{
		Period:       models.Period{Start: "2024-01-01", End: "2024-01-31"},
		TotalRevenue: 650, SaleCount: 3, AvgSale: 216.67,
	}
	if c.Current != wantCurrent {
		t.Errorf("current = %+v, want %+v", c.Current, wantCurrent)
	}
	if c.Previous != wantPrevious {
		t.Errorf("previous = %+v, want %+v", c.Previous, wantPrevious)
	}
	wantChange := models.Change{TotalRevenue: -7.69, SaleCount: -33.33, AvgSale: 38.46}
	if c.Change != wantChange {
		t.Errorf("change = %+v, want %+v", c.Change, wantChange)
	}
}

func TestCompare_EmptyPeriodIsZero(t *testing.T) {
	r := newTestReports(t)

	c, err := r.Compare(context.Background(), query.CompareFilter{
		Current:  query.Range{Start: datePtr(t, "2024-01-01"), End: datePtr(t, "2024-12-31")},
		Previous: query.Range{Start: datePtr(t, "2023-01-01"), End: datePtr(t, "2023-12-31")},
	})
	if err != nil {
		t.Fatal(err)
	}

	if c.Previous.TotalRevenue != 0 || c.Previous.SaleCount != 0 || c.Previous.AvgSale != 0 {
		t.Errorf("previous = %+v, want zero metrics", c.Previous)
	}
	if c.Previous.Period.Start != "2023-01-01" {
		t.Errorf("previous period = %+v", c.Previous.Period)
	}
	if c.Current.TotalRevenue != 1300 {
		t.Errorf("current revenue = %d", c.Current.TotalRevenue)
	}
	if c.Change.TotalRevenue != 100 || c.Change.SaleCount != 100 {
		t.Errorf("change = %+v", c.Change)
	}
}

func TestCompare_OverlapCountsAsCurrent(t *testing.T) {
	r := newTestReports(t)

	c, err := r.Compare(context.Background(), query.CompareFilter{
		Current:  query.Range{Start: datePtr(t, "2024-01-01"), End: datePtr(t, "2024-02-29")},
		Previous: query.Range{Start: datePtr(t, "2024-01-15"), End: datePtr(t, "2024-03-31")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Current.SaleCount != 5 || c.Previous.SaleCount != 1 || c.Previous.TotalRevenue != 50 {
		t.Errorf("current = %+v, previous = %+v", c.Current, c.Previous)
	}
}

type failingQuerier struct {
	store.Querier
}

func (failingQuerier) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("connection refused")
}

func (failingQuerier) Driver() string { return "fake" }

func TestReports_QueryErrorWrapped(t *testing.T) {
	r := NewReports(failingQuerier{}, testutil.DiscardLogger())

	_, err := r.Leaderboard(context.Background(), query.LeaderboardFilter{Limit: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "leaderboard report") || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error = %v", err)
	}
}

func TestTimeSeries_UnknownGranularity(t *testing.T) {
	r := NewReports(failingQuerier{}, testutil.DiscardLogger())

	_, err := r.TimeSeries(context.Background(), query.TimeSeriesFilter{Granularity: "hourly"})
	if !errors.Is(err, query.ErrUnknownGranularity) {
		t.Errorf("error = %v, want ErrUnknownGranularity", err)
	}
}
