package query

import (
	"errors"
	"fmt"
	"strings"
)

const aggregateColumns = `CAST(SUM(s.amount) AS BIGINT) AS total_revenue,
  CAST(AVG(s.amount) AS TEXT) AS avg_sale,
  COUNT(s.id) AS sale_count,
  MIN(s.amount) AS min_sale,
  MAX(s.amount) AS max_sale`

// TimeSeries buckets sales by the truncated sale date. Week buckets start on
// Monday (ISO), which is what date_trunc does on both supported engines.
//
// Columns: bucket, total_revenue, avg_sale, sale_count, min_sale, max_sale.
func TimeSeries(f TimeSeriesFilter) (Statement, error) {
	unit, err := truncUnit(f.Granularity)
	if err != nil {
		return Statement{}, err
	}

	a := &args{}
	where := newWhere(a).
		AddDateRange("s.date", f.Range).
		AddUser("s.user_id", f.UserID).
		AddGroupMembers("s.user_id", f.GroupID).
		Build()

	sql := fmt.Sprintf(`SELECT CAST(date_trunc('%s', CAST(s.date AS TIMESTAMP)) AS DATE) AS bucket,
  %s
FROM sales s%s
GROUP BY bucket
ORDER BY bucket ASC`, unit, aggregateColumns, where)

	return Statement{SQL: sql, Args: a.values}, nil
}

// UserPerformance ranks users by revenue. total_rows is the number of users
// matching the filters before LIMIT/OFFSET.
//
// Columns: id, name, role, total_revenue, avg_sale, sale_count, min_sale,
// max_sale, total_rows.
func UserPerformance(f UsersFilter) Statement {
	a := &args{}
	where := newWhere(a).
		AddDateRange("s.date", f.Range).
		AddGroupMembers("u.id", f.GroupID).
		Build()

	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT u.id, u.name, u.role,
  %s,
  COUNT(*) OVER () AS total_rows
FROM users u
JOIN sales s ON s.user_id = u.id%s
GROUP BY u.id, u.name, u.role
ORDER BY total_revenue DESC, u.id ASC`, aggregateColumns, where)

	if f.Limit != nil {
		fmt.Fprintf(&sb, "\nLIMIT %s", a.bind(int64(*f.Limit)))
	}
	if f.Offset != nil {
		fmt.Fprintf(&sb, "\nOFFSET %s", a.bind(int64(*f.Offset)))
	}

	return Statement{SQL: sb.String(), Args: a.values}
}

// UserCount counts the users UserPerformance would list without paging. It
// backs the total when a page lands past the last row and the window count
// has nothing to report.
//
// Columns: total_rows.
func UserCount(f UsersFilter) Statement {
	a := &args{}
	where := newWhere(a).
		AddDateRange("s.date", f.Range).
		AddGroupMembers("u.id", f.GroupID).
		Build()

	sql := fmt.Sprintf(`SELECT COUNT(*) AS total_rows
FROM (
  SELECT u.id
  FROM users u
  JOIN sales s ON s.user_id = u.id%s
  GROUP BY u.id
) t`, where)

	return Statement{SQL: sql, Args: a.values}
}

// GroupPerformance aggregates sales of each group's members.
//
// Columns: id, name, total_revenue, avg_sale, sale_count, min_sale, max_sale,
// member_count.
func GroupPerformance(f GroupsFilter) Statement {
	a := &args{}
	where := newWhere(a).
		AddDateRange("s.date", f.Range).
		Build()

	sql := fmt.Sprintf(`SELECT g.id, g.name,
  %s,
  COUNT(DISTINCT s.user_id) AS member_count
FROM "groups" g
JOIN user_groups ug ON ug.group_id = g.id
JOIN sales s ON s.user_id = ug.user_id%s
GROUP BY g.id, g.name
ORDER BY total_revenue DESC, g.id ASC`, aggregateColumns, where)

	return Statement{SQL: sql, Args: a.values}
}

// Leaderboard returns the top sellers. Equal totals are ordered by user id.
//
// Columns: id, name, total_revenue, sale_count.
func Leaderboard(f LeaderboardFilter) Statement {
	a := &args{}
	where := newWhere(a).
		AddDateRange("s.date", f.Range).
		AddGroupMembers("u.id", f.GroupID).
		Build()

	sql := fmt.Sprintf(`SELECT u.id, u.name,
  CAST(SUM(s.amount) AS BIGINT) AS total_revenue,
  COUNT(s.id) AS sale_count
FROM users u
JOIN sales s ON s.user_id = u.id%s
GROUP BY u.id, u.name
ORDER BY total_revenue DESC, u.id ASC
LIMIT %s`, where, a.bind(int64(f.Limit)))

	return Statement{SQL: sql, Args: a.values}
}

// Summary is a single-row aggregate over the filtered sales. It always
// returns one row, with NULL min/max/avg when nothing matched.
//
// Columns: total_revenue, sale_count, avg_sale, min_sale, max_sale,
// active_users, first_sale, last_sale.
func Summary(f SummaryFilter) Statement {
	a := &args{}
	where := newWhere(a).
		AddDateRange("s.date", f.Range).
		Build()

	sql := fmt.Sprintf(`SELECT CAST(COALESCE(SUM(s.amount), 0) AS BIGINT) AS total_revenue,
  COUNT(s.id) AS sale_count,
  CAST(AVG(s.amount) AS TEXT) AS avg_sale,
  MIN(s.amount) AS min_sale,
  MAX(s.amount) AS max_sale,
  COUNT(DISTINCT s.user_id) AS active_users,
  MIN(s.date) AS first_sale,
  MAX(s.date) AS last_sale
FROM sales s%s`, where)

	return Statement{SQL: sql, Args: a.values}
}

const (
	PeriodCurrent  = "current"
	PeriodPrevious = "previous"
)

var errOpenCompareRange = errors.New("query: compare ranges must be closed")

// Compare labels each sale with the period it falls in and aggregates per
// label in one round trip. A sale inside both ranges counts as current. A
// period with no sales produces no row.
//
// Columns: period, total_revenue, sale_count, avg_sale.
func Compare(f CompareFilter) (Statement, error) {
	for _, r := range []Range{f.Current, f.Previous} {
		if r.Start == nil || r.End == nil {
			return Statement{}, errOpenCompareRange
		}
	}

	a := &args{}
	curStart, curEnd := a.date(*f.Current.Start), a.date(*f.Current.End)
	prevStart, prevEnd := a.date(*f.Previous.Start), a.date(*f.Previous.End)

	sql := fmt.Sprintf(`SELECT t.period,
  CAST(SUM(t.amount) AS BIGINT) AS total_revenue,
  COUNT(*) AS sale_count,
  CAST(AVG(t.amount) AS TEXT) AS avg_sale
FROM (
  SELECT s.amount,
    CASE
      WHEN s.date BETWEEN %s AND %s THEN '%s'
      WHEN s.date BETWEEN %s AND %s THEN '%s'
    END AS period
  FROM sales s
) t
WHERE t.period IS NOT NULL
GROUP BY t.period`, curStart, curEnd, PeriodCurrent, prevStart, prevEnd, PeriodPrevious)

	return Statement{SQL: sql, Args: a.values}, nil
}
