// Package params turns raw query strings into validated report filters.
//
// Every parser is a pure function of its input apart from debug logging of
// ignored id filters. Failures are *errors.AppError values carrying the
// 400-class code for the first offending parameter.
package params

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"sales-analytics/internal/errors"
	"sales-analytics/internal/query"
)

const (
	DefaultGranularity      = query.Month
	DefaultLeaderboardLimit = 10
	MaxLimit                = 100
)

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

func (p *Parser) TimeSeries(values url.Values) (query.TimeSeriesFilter, error) {
	req := timeSeriesRequest{
		Granularity: values.Get("granularity"),
		StartDate:   values.Get("start_date"),
		EndDate:     values.Get("end_date"),
	}
	if req.Granularity == "" {
		req.Granularity = string(DefaultGranularity)
	}

	if err := check(req); err != nil {
		return query.TimeSeriesFilter{}, err
	}

	return query.TimeSeriesFilter{
		Range:       toRange(req.StartDate, req.EndDate),
		Granularity: query.Granularity(req.Granularity),
		UserID:      p.idParam(values, "user_id"),
		GroupID:     p.idParam(values, "group_id"),
	}, nil
}

func (p *Parser) Users(values url.Values) (query.UsersFilter, error) {
	req := usersRequest{
		StartDate: values.Get("start_date"),
		EndDate:   values.Get("end_date"),
		Limit:     intParam(values, "limit", 0),
		Offset:    intParam(values, "offset", -1),
	}

	if err := check(req); err != nil {
		return query.UsersFilter{}, err
	}

	return query.UsersFilter{
		Range:   toRange(req.StartDate, req.EndDate),
		GroupID: p.idParam(values, "group_id"),
		Limit:   req.Limit,
		Offset:  req.Offset,
	}, nil
}

func (p *Parser) Groups(values url.Values) (query.GroupsFilter, error) {
	req := groupsRequest{
		StartDate: values.Get("start_date"),
		EndDate:   values.Get("end_date"),
	}

	if err := check(req); err != nil {
		return query.GroupsFilter{}, err
	}

	return query.GroupsFilter{Range: toRange(req.StartDate, req.EndDate)}, nil
}

func (p *Parser) Leaderboard(values url.Values) (query.LeaderboardFilter, error) {
	req := leaderboardRequest{
		StartDate: values.Get("start_date"),
		EndDate:   values.Get("end_date"),
		Limit:     intParam(values, "limit", 0),
	}

	if err := check(req); err != nil {
		return query.LeaderboardFilter{}, err
	}

	limit := DefaultLeaderboardLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	return query.LeaderboardFilter{
		Range:   toRange(req.StartDate, req.EndDate),
		GroupID: p.idParam(values, "group_id"),
		Limit:   limit,
	}, nil
}

func (p *Parser) Summary(values url.Values) (query.SummaryFilter, error) {
	req := summaryRequest{
		StartDate: values.Get("start_date"),
		EndDate:   values.Get("end_date"),
	}

	if err := check(req); err != nil {
		return query.SummaryFilter{}, err
	}

	return query.SummaryFilter{Range: toRange(req.StartDate, req.EndDate)}, nil
}

func (p *Parser) Compare(values url.Values) (query.CompareFilter, error) {
	req := compareRequest{
		CurrentStart:  values.Get("current_start"),
		CurrentEnd:    values.Get("current_end"),
		PreviousStart: values.Get("previous_start"),
		PreviousEnd:   values.Get("previous_end"),
	}

	if err := check(req); err != nil {
		return query.CompareFilter{}, err
	}

	return query.CompareFilter{
		Current:  toRange(req.CurrentStart, req.CurrentEnd),
		Previous: toRange(req.PreviousStart, req.PreviousEnd),
	}, nil
}

// idParam parses an optional numeric id. Non-numeric input is treated as if
// the filter was not given.
func (p *Parser) idParam(values url.Values, key string) *int64 {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.logger.Debug("ignoring non-numeric id filter", "param", key, "value", raw)
		return nil
	}
	return &id
}

// intParam returns nil when key is absent. Input that is not an integer is
// replaced with invalid so the range rules reject it.
func intParam(values url.Values, key string, invalid int) *int {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return &invalid
	}
	return &n
}

func toRange(start, end string) query.Range {
	return query.Range{Start: toDate(start), End: toDate(end)}
}

func toDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func check(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.InternalWrap(err, "failed to validate parameters")
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return errors.Invalid(errors.CodeMissingParams, missing[0],
			fmt.Sprintf("Missing required parameters: %s", strings.Join(missing, ", ")))
	}

	return translate(verrs[0])
}

func translate(fe validator.FieldError) *errors.AppError {
	field := fe.Field()

	switch {
	case fe.Tag() == "isodate":
		return errors.Invalid(errors.CodeInvalidDate, field,
			fmt.Sprintf("%s must be a valid date in YYYY-MM-DD format", field))
	case fe.Tag() == "daterange":
		return errors.Invalid(errors.CodeInvalidDateRange, field,
			fmt.Sprintf("%s must not be after %s", fe.Param(), field))
	case field == "granularity":
		names := make([]string, len(query.Granularities))
		for i, g := range query.Granularities {
			names[i] = string(g)
		}
		return errors.Invalid(errors.CodeInvalidGranularity, field,
			"granularity must be one of: "+strings.Join(names, ", "))
	case field == "limit":
		return errors.Invalid(errors.CodeInvalidLimit, field,
			fmt.Sprintf("limit must be an integer between 1 and %d", MaxLimit))
	case field == "offset":
		return errors.Invalid(errors.CodeInvalidOffset, field,
			"offset must be a non-negative integer")
	default:
		return errors.Internal(fmt.Sprintf("unhandled validation rule %q on %s", fe.Tag(), field))
	}
}
