package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sales-analytics/internal/format"
	"sales-analytics/internal/models"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/query"
	"sales-analytics/internal/store"
)

// Reports runs report statements against the pool and shapes the rows.
type Reports struct {
	db     store.Querier
	logger *slog.Logger
}

func NewReports(db store.Querier, logger *slog.Logger) *Reports {
	return &Reports{
		db:     db,
		logger: logger,
	}
}

func (r *Reports) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Reports) TimeSeries(ctx context.Context, f query.TimeSeriesFilter) ([]models.TimeSeriesPoint, error) {
	stmt, err := query.TimeSeries(f)
	if err != nil {
		return nil, err
	}

	points := []models.TimeSeriesPoint{}
	err = r.run(ctx, "timeseries", stmt, func(rows store.Rows) error {
		var (
			p      models.TimeSeriesPoint
			bucket time.Time
			avg    sql.NullString
		)
		if err := rows.Scan(&bucket, &p.TotalRevenue, &avg, &p.SaleCount, &p.MinSale, &p.MaxSale); err != nil {
			return err
		}
		p.Period = format.Date(bucket)
		p.AvgSale = format.NullDecimal2(avg)
		points = append(points, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// UserPerformance returns one page of users ranked by revenue. Total counts
// every matching user, including when the offset is past the last one.
func (r *Reports) UserPerformance(ctx context.Context, f query.UsersFilter) (models.UserPage, error) {
	page := models.UserPage{Users: []models.UserPerformance{}}

	err := r.run(ctx, "users", query.UserPerformance(f), func(rows store.Rows) error {
		var (
			u     models.UserPerformance
			avg   sql.NullString
			total int64
		)
		if err := rows.Scan(&u.UserID, &u.Name, &u.Role, &u.TotalRevenue, &avg,
			&u.SaleCount, &u.MinSale, &u.MaxSale, &total); err != nil {
			return err
		}
		u.AvgSale = format.NullDecimal2(avg)
		page.Total = int(total)
		page.Users = append(page.Users, u)
		return nil
	})
	if err != nil {
		return models.UserPage{}, err
	}

	if len(page.Users) == 0 && f.Offset != nil && *f.Offset > 0 {
		err = r.run(ctx, "users_count", query.UserCount(f), func(rows store.Rows) error {
			var total int64
			if err := rows.Scan(&total); err != nil {
				return err
			}
			page.Total = int(total)
			return nil
		})
		if err != nil {
			return models.UserPage{}, err
		}
	}
	return page, nil
}

func (r *Reports) GroupPerformance(ctx context.Context, f query.GroupsFilter) ([]models.GroupPerformance, error) {
	groups := []models.GroupPerformance{}

	err := r.run(ctx, "groups", query.GroupPerformance(f), func(rows store.Rows) error {
		var (
			g   models.GroupPerformance
			avg sql.NullString
		)
		if err := rows.Scan(&g.GroupID, &g.Name, &g.TotalRevenue, &avg,
			&g.SaleCount, &g.MinSale, &g.MaxSale, &g.MemberCount); err != nil {
			return err
		}
		g.AvgSale = format.NullDecimal2(avg)
		groups = append(groups, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Leaderboard ranks sellers 1..n in result order.
func (r *Reports) Leaderboard(ctx context.Context, f query.LeaderboardFilter) ([]models.LeaderboardEntry, error) {
	entries := []models.LeaderboardEntry{}

	err := r.run(ctx, "leaderboard", query.Leaderboard(f), func(rows store.Rows) error {
		e := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalRevenue, &e.SaleCount); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Summary reports overall figures. The period echoes explicit bounds and
// otherwise falls back to the first and last sale dates found.
func (r *Reports) Summary(ctx context.Context, f query.SummaryFilter) (models.Summary, error) {
	var s models.Summary

	err := r.run(ctx, "summary", query.Summary(f), func(rows store.Rows) error {
		var (
			avg              sql.NullString
			minSale, maxSale sql.NullInt64
			first, last      sql.NullTime
		)
		if err := rows.Scan(&s.TotalRevenue, &s.SaleCount, &avg, &minSale, &maxSale,
			&s.ActiveUsers, &first, &last); err != nil {
			return err
		}
		s.AvgSale = format.NullDecimal2(avg)
		s.MinSale = format.NullInt64(minSale)
		s.MaxSale = format.NullInt64(maxSale)
		s.Period = models.Period{
			Start: boundOr(f.Start, format.NullDate(first)),
			End:   boundOr(f.End, format.NullDate(last)),
		}
		return nil
	})
	if err != nil {
		return models.Summary{}, err
	}
	return s, nil
}

// Compare aggregates both periods in one query. A period without sales is
// reported with zero metrics.
func (r *Reports) Compare(ctx context.Context, f query.CompareFilter) (models.PeriodComparison, error) {
	stmt, err := query.Compare(f)
	if err != nil {
		return models.PeriodComparison{}, err
	}

	c := models.PeriodComparison{
		Current:  models.PeriodMetrics{Period: rangePeriod(f.Current)},
		Previous: models.PeriodMetrics{Period: rangePeriod(f.Previous)},
	}

	err = r.run(ctx, "compare", stmt, func(rows store.Rows) error {
		var (
			label string
			m     models.PeriodMetrics
			avg   sql.NullString
		)
		if err := rows.Scan(&label, &m.TotalRevenue, &m.SaleCount, &avg); err != nil {
			return err
		}
		m.AvgSale = format.NullDecimal2(avg)

		switch label {
		case query.PeriodCurrent:
			m.Period = c.Current.Period
			c.Current = m
		case query.PeriodPrevious:
			m.Period = c.Previous.Period
			c.Previous = m
		default:
			return fmt.Errorf("unexpected period label %q", label)
		}
		return nil
	})
	if err != nil {
		return models.PeriodComparison{}, err
	}

	c.Change = models.Change{
		TotalRevenue: format.PercentChange(c.Current.TotalRevenue, c.Previous.TotalRevenue),
		SaleCount:    format.PercentChange(c.Current.SaleCount, c.Previous.SaleCount),
		AvgSale:      format.PercentChangeFloat(c.Current.AvgSale, c.Previous.AvgSale),
	}
	return c, nil
}

// run executes stmt and calls scan for every row, recording query metrics.
func (r *Reports) run(ctx context.Context, report string, stmt query.Statement, scan func(store.Rows) error) error {
	start := time.Now()
	err := r.query(ctx, stmt, scan)
	duration := time.Since(start)

	observability.RecordQuery(report, r.db.Driver(), duration, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "report query failed",
			"report", report,
			"error", err,
			"duration", duration,
		)
		return fmt.Errorf("%s report: %w", report, err)
	}

	r.logger.DebugContext(ctx, "report query completed",
		"report", report,
		"args", len(stmt.Args),
		"duration", duration,
	)
	return nil
}

func (r *Reports) query(ctx context.Context, stmt query.Statement, scan func(store.Rows) error) error {
	rows, err := r.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
	}
	return rows.Err()
}

func boundOr(explicit *time.Time, fallback string) string {
	if explicit != nil {
		return format.Date(*explicit)
	}
	return fallback
}

func rangePeriod(r query.Range) models.Period {
	return models.Period{
		Start: boundOr(r.Start, ""),
		End:   boundOr(r.End, ""),
	}
}
