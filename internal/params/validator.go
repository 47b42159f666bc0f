package params

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator with the isodate tag and the
// date range struct check registered.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			return isISODate(fl.Field().String())
		})

		validate.RegisterStructValidation(validateDateRanges,
			timeSeriesRequest{}, usersRequest{}, groupsRequest{},
			leaderboardRequest{}, summaryRequest{}, compareRequest{},
		)
	})

	return validate
}

// isISODate reports whether s is a literal YYYY-MM-DD that names a real
// calendar day.
func isISODate(s string) bool {
	if !isoDateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

type dateRange struct {
	startField string
	endField   string
	start      string
	end        string
}

type rangedRequest interface {
	dateRanges() []dateRange
}

// validateDateRanges flags end bounds that precede their start. Ranges with a
// missing or malformed bound are left to the field validators.
func validateDateRanges(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(rangedRequest)
	if !ok {
		return
	}

	for _, r := range req.dateRanges() {
		if !isISODate(r.start) || !isISODate(r.end) {
			continue
		}
		// Fixed-width ISO dates order lexicographically.
		if r.start > r.end {
			sl.ReportError(r.end, r.endField, r.endField, "daterange", r.startField)
		}
	}
}
