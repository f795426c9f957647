package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"laptopcatalog/internal/query"
	"laptopcatalog/pkg/client"
)

// ListState is everything the list page shows, carried in the query string.
type ListState struct {
	Page      int
	Limit     int
	SortBy    query.SortBy
	SortOrder query.SortOrder
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
}

// DefaultListState is the state of a bare /laptops request.
func DefaultListState() ListState {
	return ListState{
		Page:      query.DefaultPage,
		Limit:     query.DefaultLimit,
		SortBy:    query.SortByName,
		SortOrder: query.Asc,
	}
}

// ParseListState reads a list state from query parameters, falling back to
// defaults for anything missing or malformed.
func ParseListState(values url.Values) ListState {
	return ListState{
		Page:      query.ParseInt(values.Get("page"), query.DefaultPage),
		Limit:     query.ParseInt(values.Get("limit"), query.DefaultLimit),
		SortBy:    query.ParseSortBy(values.Get("sortBy")),
		SortOrder: query.ParseSortOrder(values.Get("sortOrder")),
		Search:    strings.TrimSpace(values.Get("search")),
		MinPrice:  parsePrice(values.Get("minPrice")),
		MaxPrice:  parsePrice(values.Get("maxPrice")),
	}
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil
	}
	return &f
}

// Values renders the state back into query parameters.
func (s ListState) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("limit", strconv.Itoa(s.Limit))
	v.Set("sortBy", string(s.SortBy))
	v.Set("sortOrder", string(s.SortOrder))
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	if s.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*s.MinPrice, 'f', -1, 64))
	}
	if s.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*s.MaxPrice, 'f', -1, 64))
	}
	return v
}

// URL is the list page link for this state.
func (s ListState) URL() string {
	return "/laptops?" + s.Values().Encode()
}

// ToggleSort clicks a column header: the active column flips direction, any
// other column becomes active in ascending order.
func (s ListState) ToggleSort(by query.SortBy) ListState {
	if s.SortBy == by {
		if s.SortOrder == query.Asc {
			s.SortOrder = query.Desc
		} else {
			s.SortOrder = query.Asc
		}
	} else {
		s.SortBy = by
		s.SortOrder = query.Asc
	}
	s.Page = 1
	return s
}

// WithSearch applies a submitted search term.
func (s ListState) WithSearch(term string) ListState {
	s.Search = strings.TrimSpace(term)
	s.Page = 1
	return s
}

// WithFilter applies a submitted price range.
func (s ListState) WithFilter(lo, hi *float64) ListState {
	s.MinPrice, s.MaxPrice = lo, hi
	s.Page = 1
	return s
}

// ClearFilter removes the price range.
func (s ListState) ClearFilter() ListState {
	return s.WithFilter(nil, nil)
}

// WithPage moves to page n.
func (s ListState) WithPage(n int) ListState {
	if n < 1 {
		n = 1
	}
	s.Page = n
	return s
}

// Filtered reports whether a price bound is set.
func (s ListState) Filtered() bool {
	return s.MinPrice != nil || s.MaxPrice != nil
}

// TotalPages is the number of pages needed for total records, at least 1.
func (s ListState) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + s.Limit - 1) / s.Limit
}

// Variables converts the state into the laptops query arguments.
func (s ListState) Variables() client.ListVariables {
	vars := client.ListVariables{
		Page:      s.Page,
		Limit:     s.Limit,
		SortBy:    string(s.SortBy),
		SortOrder: string(s.SortOrder),
		Search:    s.Search,
	}
	if s.Filtered() {
		vars.Filter = &client.PriceFilter{MinPrice: s.MinPrice, MaxPrice: s.MaxPrice}
	}
	return vars
}
