// Package query builds the parameterized aggregate statements behind each
// report. Placeholders are numbered $1..$n in the order arguments are bound.
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownGranularity = errors.New("query: unknown granularity")

// Statement is SQL text plus its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// args hands out placeholders in bind order so indices never repeat or skip.
type args struct {
	values []any
}

func (a *args) bind(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

func (a *args) date(t time.Time) string {
	return fmt.Sprintf("CAST(%s AS DATE)", a.bind(t))
}

// WhereBuilder collects AND-ed conditions. Only filters that are set add a
// clause.
type WhereBuilder struct {
	args    *args
	clauses []string
}

func newWhere(a *args) *WhereBuilder {
	return &WhereBuilder{args: a}
}

func (wb *WhereBuilder) AddDateRange(column string, r Range) *WhereBuilder {
	if r.Start != nil {
		wb.clauses = append(wb.clauses, fmt.Sprintf("%s >= %s", column, wb.args.date(*r.Start)))
	}
	if r.End != nil {
		wb.clauses = append(wb.clauses, fmt.Sprintf("%s <= %s", column, wb.args.date(*r.End)))
	}
	return wb
}

func (wb *WhereBuilder) AddUser(column string, userID *int64) *WhereBuilder {
	if userID != nil {
		wb.clauses = append(wb.clauses, fmt.Sprintf("%s = %s", column, wb.args.bind(*userID)))
	}
	return wb
}

// AddGroupMembers restricts column (a user id) to members of the group.
func (wb *WhereBuilder) AddGroupMembers(column string, groupID *int64) *WhereBuilder {
	if groupID != nil {
		wb.clauses = append(wb.clauses, fmt.Sprintf(
			"%s IN (SELECT ug.user_id FROM user_groups ug WHERE ug.group_id = %s)",
			column, wb.args.bind(*groupID)))
	}
	return wb
}

// Build returns the WHERE clause with a leading newline, or "" if empty.
func (wb *WhereBuilder) Build() string {
	if len(wb.clauses) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(wb.clauses, "\n  AND ")
}

func truncUnit(g Granularity) (string, error) {
	switch g {
	case Day, Week, Month, Quarter, Year:
		return string(g), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
	}
}
