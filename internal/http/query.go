package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
	"github.com/shopspring/decimal"
)

// queryParams reads optional query parameters and keeps the first parse error.
type queryParams struct {
	values url.Values
	err    error
}

func newQueryParams(v url.Values) *queryParams {
	return &queryParams{values: v}
}

func (q *queryParams) fail(name string) {
	if q.err == nil {
		q.err = domain.Validationf("Query parameter '%s' is invalid.", name)
	}
}

func (q *queryParams) string(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

func (q *queryParams) int(name string) int {
	s := q.string(name)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.fail(name)
	}
	return n
}

func (q *queryParams) int64Ptr(name string) *int64 {
	s := q.string(name)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &n
}

func (q *queryParams) bool(name string) bool {
	b := q.boolPtr(name)
	return b != nil && *b
}

func (q *queryParams) boolPtr(name string) *bool {
	s := q.string(name)
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &b
}

func (q *queryParams) decimalPtr(name string) *decimal.Decimal {
	s := q.string(name)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &d
}

// timePtr accepts RFC 3339 timestamps and plain dates.
func (q *queryParams) timePtr(name string) *time.Time {
	s := q.string(name)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	q.fail(name)
	return nil
}
