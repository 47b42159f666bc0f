// Package testutil provides an in-memory DuckDB store for tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sales-analytics/internal/config"
	"sales-analytics/internal/models"
	"sales-analytics/internal/store"
)

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB opens an empty in-memory DuckDB with the schema created. It is
// closed when the test ends.
func NewDB(t testing.TB) *store.DuckDB {
	t.Helper()

	db, err := store.NewDuckDB(context.Background(), config.DatabaseConfig{
		Driver:         config.DriverDuckDB,
		MaxConns:       4,
		IdleTimeout:    time.Minute,
		AcquireTimeout: 5 * time.Second,
	}, DiscardLogger())
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(db.Close)

	if err := store.CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

// Date parses a YYYY-MM-DD literal.
func Date(t testing.TB, s string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func MustLoad(t testing.TB, q store.Querier, data store.SeedData) {
	t.Helper()

	if err := store.Load(context.Background(), q, data); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
}

// Fixture is a small hand-checked dataset.
//
//	users:  1 Alice (group 1), 2 Bob (group 1, 2), 3 Carol (group 2), 4 Dan (no sales)
//	sales:
//	  Alice 2024-01-10 100, 2024-01-20 300, 2024-02-05 200
//	  Bob   2024-01-15 250, 2024-03-01 50
//	  Carol 2024-02-10 400
//
// Totals: Alice 600 (3 sales), Carol 400 (1), Bob 300 (2); overall 1300 over 6 sales.
func Fixture(t testing.TB) store.SeedData {
	return store.SeedData{
		Users: []models.User{
			{ID: 1, Name: "Alice", Role: "manager"},
			{ID: 2, Name: "Bob", Role: "sales_rep"},
			{ID: 3, Name: "Carol", Role: "sales_rep"},
			{ID: 4, Name: "Dan", Role: "sales_rep"},
		},
		Groups: []models.Group{
			{ID: 1, Name: "North"},
			{ID: 2, Name: "South"},
		},
		Memberships: []models.UserGroup{
			{UserID: 1, GroupID: 1},
			{UserID: 2, GroupID: 1},
			{UserID: 2, GroupID: 2},
			{UserID: 3, GroupID: 2},
		},
		Sales: []models.Sale{
			{ID: 1, UserID: 1, Amount: 100, Date: Date(t, "2024-01-10")},
			{ID: 2, UserID: 1, Amount: 300, Date: Date(t, "2024-01-20")},
			{ID: 3, UserID: 1, Amount: 200, Date: Date(t, "2024-02-05")},
			{ID: 4, UserID: 2, Amount: 250, Date: Date(t, "2024-01-15")},
			{ID: 5, UserID: 2, Amount: 50, Date: Date(t, "2024-03-01")},
			{ID: 6, UserID: 3, Amount: 400, Date: Date(t, "2024-02-10")},
		},
	}
}
