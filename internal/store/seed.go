package store

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"sales-analytics/internal/models"
)

// SeedData is the sample dataset loaded by Seed.
type SeedData struct {
	Users       []models.User
	Groups      []models.Group
	Memberships []models.UserGroup
	Sales       []models.Sale
}

var seedUsers = []struct {
	name string
	role string
}{
	{"Alice Johnson", "manager"},
	{"Bob Smith", "sales_rep"},
	{"Carol White", "sales_rep"},
	{"David Brown", "senior_rep"},
	{"Eve Davis", "sales_rep"},
	{"Frank Miller", "manager"},
	{"Grace Wilson", "senior_rep"},
	{"Henry Moore", "sales_rep"},
	{"Ivy Taylor", "sales_rep"},
	{"Jack Anderson", "senior_rep"},
	{"Karen Thomas", "sales_rep"},
	{"Leo Martin", "sales_rep"},
}

var seedGroups = []string{"North", "South", "East", "West"}

// GenerateSeedData builds a deterministic dataset of twelve users in four
// regional groups with up to three sales per day for days days from from.
// Managers belong to two groups.
func GenerateSeedData(from time.Time, days int) SeedData {
	rng := rand.New(rand.NewPCG(20230101, 42))

	var data SeedData
	for i, g := range seedGroups {
		data.Groups = append(data.Groups, models.Group{ID: int64(i + 1), Name: g})
	}

	for i, u := range seedUsers {
		id := int64(i + 1)
		data.Users = append(data.Users, models.User{ID: id, Name: u.name, Role: u.role})

		home := int64(i%len(seedGroups) + 1)
		data.Memberships = append(data.Memberships, models.UserGroup{UserID: id, GroupID: home})
		if u.role == "manager" {
			data.Memberships = append(data.Memberships, models.UserGroup{UserID: id, GroupID: home%int64(len(seedGroups)) + 1})
		}
	}

	saleID := int64(1)
	for d := 0; d < days; d++ {
		day := from.AddDate(0, 0, d)
		for n := rng.IntN(4); n > 0; n-- {
			data.Sales = append(data.Sales, models.Sale{
				ID:     saleID,
				UserID: int64(rng.IntN(len(seedUsers)) + 1),
				Amount: int64(500 + rng.IntN(99500)),
				Date:   day,
			})
			saleID++
		}
	}

	return data
}

// Seed creates the schema and loads sample data unless the sales table
// already exists. It reports whether data was written.
func Seed(ctx context.Context, q Querier, logger *slog.Logger) (bool, error) {
	exists, err := TableExists(ctx, q, "sales")
	if err != nil {
		return false, err
	}
	if exists {
		logger.Info("sales table already exists, skipping seed")
		return false, nil
	}

	start := time.Now()
	if err := CreateSchema(ctx, q); err != nil {
		return false, err
	}

	data := GenerateSeedData(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 731)
	if err := Load(ctx, q, data); err != nil {
		return false, err
	}

	logger.Info("database seeded",
		"users", len(data.Users),
		"groups", len(data.Groups),
		"memberships", len(data.Memberships),
		"sales", len(data.Sales),
		"duration", time.Since(start),
	)
	return true, nil
}

// Load inserts data in dependency order.
func Load(ctx context.Context, q Querier, data SeedData) error {
	if err := InsertUsers(ctx, q, data.Users); err != nil {
		return err
	}
	if err := InsertGroups(ctx, q, data.Groups); err != nil {
		return err
	}
	if err := InsertMemberships(ctx, q, data.Memberships); err != nil {
		return err
	}
	if err := InsertSales(ctx, q, data.Sales); err != nil {
		return fmt.Errorf("seed sales: %w", err)
	}
	return nil
}
