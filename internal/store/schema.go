package store

import (
	"context"
	"fmt"
	"strings"

	"sales-analytics/internal/models"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY,
  name VARCHAR NOT NULL,
  role VARCHAR NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS "groups" (
  id INTEGER PRIMARY KEY,
  name VARCHAR NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS user_groups (
  user_id INTEGER NOT NULL REFERENCES users(id),
  group_id INTEGER NOT NULL REFERENCES "groups"(id)
)`,
	`CREATE TABLE IF NOT EXISTS sales (
  id INTEGER PRIMARY KEY,
  user_id INTEGER NOT NULL REFERENCES users(id),
  amount BIGINT NOT NULL,
  date DATE NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_user_id ON sales(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_groups_group_id ON user_groups(group_id)`,
}

// insertBatchSize keeps multi-row inserts well under the PostgreSQL limit of
// 65535 bound parameters.
const insertBatchSize = 500

func CreateSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	rows, err := q.Query(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = CAST($1 AS VARCHAR)", table)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, fmt.Errorf("failed to scan table count: %w", err)
		}
	}
	return count > 0, rows.Err()
}

func InsertUsers(ctx context.Context, q Querier, users []models.User) error {
	return insertBatched(ctx, q, "users (id, name, role)", []string{"%s", "%s", "%s"}, len(users),
		func(i int) []any { return []any{users[i].ID, users[i].Name, users[i].Role} })
}

func InsertGroups(ctx context.Context, q Querier, groups []models.Group) error {
	return insertBatched(ctx, q, `"groups" (id, name)`, []string{"%s", "%s"}, len(groups),
		func(i int) []any { return []any{groups[i].ID, groups[i].Name} })
}

func InsertMemberships(ctx context.Context, q Querier, memberships []models.UserGroup) error {
	return insertBatched(ctx, q, "user_groups (user_id, group_id)", []string{"%s", "%s"}, len(memberships),
		func(i int) []any { return []any{memberships[i].UserID, memberships[i].GroupID} })
}

func InsertSales(ctx context.Context, q Querier, sales []models.Sale) error {
	return insertBatched(ctx, q, "sales (id, user_id, amount, date)", []string{"%s", "%s", "%s", "CAST(%s AS DATE)"}, len(sales),
		func(i int) []any {
			s := sales[i]
			return []any{s.ID, s.UserID, s.Amount, s.Date}
		})
}

// insertBatched writes n rows as multi-row INSERTs. Each entry of columns is
// a format wrapping that column's placeholder.
func insertBatched(ctx context.Context, q Querier, target string, columns []string, n int, row func(i int) []any) error {
	for start := 0; start < n; start += insertBatchSize {
		end := min(start+insertBatchSize, n)

		var sb strings.Builder
		args := make([]any, 0, (end-start)*len(columns))
		fmt.Fprintf(&sb, "INSERT INTO %s VALUES ", target)

		for i := start; i < end; i++ {
			if i > start {
				sb.WriteString(", ")
			}
			values := row(i)
			sb.WriteByte('(')
			for c, col := range columns {
				if c > 0 {
					sb.WriteString(", ")
				}
				args = append(args, values[c])
				fmt.Fprintf(&sb, col, fmt.Sprintf("$%d", len(args)))
			}
			sb.WriteByte(')')
		}

		if err := q.Exec(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", target, err)
		}
	}
	return nil
}
