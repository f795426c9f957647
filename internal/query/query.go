// Package query translates listing parameters into a store-neutral query.
package query

import (
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// SortBy is the public sort column.
type SortBy string

const (
	SortByName         SortBy = "NAME"
	SortByPricePerHour SortBy = "PRICE_PER_HOUR"
)

// SortOrder is the public sort direction.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// Store-level attribute names.
const (
	FieldName         = "name"
	FieldPricePerHour = "pricePerHour"
)

// WarnMaxBelowMin is returned when an inverted price range drops its upper bound.
const WarnMaxBelowMin = "maxPrice is less than minPrice; ignoring maxPrice filter"

// PriceFilter bounds pricePerHour. Nil bounds are open.
type PriceFilter struct {
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

// ListArgs are the raw listing arguments as received from a caller.
type ListArgs struct {
	Page      int
	Limit     int
	SortBy    SortBy
	SortOrder SortOrder
	Filter    *PriceFilter
	Search    string
}

// Criteria are the match conditions of a query.
type Criteria struct {
	// NameContains is a literal, case-insensitive substring of name. Empty means any name.
	NameContains string
	MinPrice     *float64
	MaxPrice     *float64
}

// NamePattern returns NameContains as an unanchored regular expression
// matching the literal text, or "" when there is no search.
func (c Criteria) NamePattern() string {
	if c.NameContains == "" {
		return ""
	}
	return regexp.QuoteMeta(c.NameContains)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NameLike returns NameContains as a lower-cased SQL LIKE pattern using
// backslash as the escape character.
func (c Criteria) NameLike() string {
	return "%" + likeEscaper.Replace(strings.ToLower(c.NameContains)) + "%"
}

// Matches reports whether a record with the given name and price satisfies the criteria.
func (c Criteria) Matches(name string, price float64) bool {
	if c.NameContains != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(c.NameContains)) {
		return false
	}
	if c.MinPrice != nil && price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && price > *c.MaxPrice {
		return false
	}
	return true
}

// Sort is a single field + direction pair.
type Sort struct {
	Field      string
	Descending bool
}

// Query is the output of Build, consumed unchanged by the stores.
type Query struct {
	Criteria Criteria
	Sort     Sort
	Page     int
	Skip     int
	Limit    int
}

// Build translates listing arguments into a query. The returned warnings
// describe arguments that were adjusted rather than rejected.
func Build(args ListArgs) (Query, []string) {
	var warnings []string

	page := clamp(args.Page, DefaultPage)
	limit := clamp(args.Limit, DefaultLimit)

	q := Query{
		Page:  page,
		Skip:  (page - 1) * limit,
		Limit: limit,
		Sort:  buildSort(args.SortBy, args.SortOrder),
	}

	q.Criteria.NameContains = strings.TrimSpace(args.Search)

	if f := args.Filter; f != nil {
		if valid(f.MinPrice) {
			lo := *f.MinPrice
			q.Criteria.MinPrice = &lo
		}
		if valid(f.MaxPrice) {
			hi := *f.MaxPrice
			if q.Criteria.MinPrice == nil || hi >= *q.Criteria.MinPrice {
				q.Criteria.MaxPrice = &hi
			} else {
				warnings = append(warnings, WarnMaxBelowMin)
			}
		}
	}

	return q, warnings
}

// ParseInt converts a loosely typed page or limit value. Non-numeric
// values and values below 1 yield def.
func ParseInt(v any, def int) int {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return def
		}
		n = int(f)
	}
	return clamp(n, def)
}

// ParseSortBy maps a public sort column, falling back to NAME.
func ParseSortBy(s string) SortBy {
	if SortBy(strings.ToUpper(s)) == SortByPricePerHour {
		return SortByPricePerHour
	}
	return SortByName
}

// ParseSortOrder maps a public direction, falling back to ASC.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(strings.ToUpper(s)) == Desc {
		return Desc
	}
	return Asc
}

func buildSort(by SortBy, order SortOrder) Sort {
	field := FieldName
	if by == SortByPricePerHour {
		field = FieldPricePerHour
	}
	return Sort{Field: field, Descending: order == Desc}
}

func clamp(n, def int) int {
	if n < 1 {
		return def
	}
	return n
}

func valid(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0)
}
