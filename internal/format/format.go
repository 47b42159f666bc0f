// Package format normalizes raw aggregate values coming out of the database
// into the numeric and date conventions used by API responses.
package format

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Decimal2 parses a numeric string and rounds it half away from zero to two
// places. Unparseable or empty input yields 0.
func Decimal2(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0
	}
	f, _ := d.Round(2).Float64()
	return f
}

// Round2 rounds half away from zero to two places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// PercentChange returns the change from previous to current as a percentage
// rounded to two places. A zero previous value reports 100 when current grew
// and 0 otherwise.
func PercentChange(current, previous int64) float64 {
	return percentChange(decimal.NewFromInt(current), decimal.NewFromInt(previous))
}

// PercentChangeFloat is PercentChange for already rounded averages.
func PercentChangeFloat(current, previous float64) float64 {
	return percentChange(decimal.NewFromFloat(current), decimal.NewFromFloat(previous))
}

var hundred = decimal.NewFromInt(100)

func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	f, _ := current.Sub(previous).Mul(hundred).Div(previous).Round(2).Float64()
	return f
}

// Date renders the calendar date of t, ignoring time of day and zone offset.
func Date(t time.Time) string {
	return t.Format(dateLayout)
}

func NullInt64(v sql.NullInt64) int64 {
	if v.Valid {
		return v.Int64
	}
	return 0
}

func NullDecimal2(v sql.NullString) float64 {
	if v.Valid {
		return Decimal2(v.String)
	}
	return 0
}

func NullDate(v sql.NullTime) string {
	if v.Valid {
		return Date(v.Time)
	}
	return ""
}
