package client

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// FetchPolicy controls how reads use the cache.
type FetchPolicy int

const (
	// CacheFirst answers from the cache when it can, otherwise from the network.
	CacheFirst FetchPolicy = iota
	// CacheAndNetwork answers from the cache when it can and refreshes it in
	// the background; a miss goes to the network.
	CacheAndNetwork
	// NetworkOnly always queries the API and refreshes the cache.
	NetworkOnly
)

// Laptop is a catalog entry as returned by the API.
type Laptop struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Configuration string  `json:"configuration"`
	PricePerHour  float64 `json:"pricePerHour"`
	ImageURL      *string `json:"imageUrl"`
	CreatedAt     *string `json:"createdAt"`
	UpdatedAt     *string `json:"updatedAt"`
}

// Image returns the image URL or "".
func (l Laptop) Image() string {
	if l.ImageURL == nil {
		return ""
	}
	return *l.ImageURL
}

// LaptopPage is one page of a listing.
type LaptopPage struct {
	Laptops    []Laptop `json:"laptops"`
	TotalCount int      `json:"totalCount"`
}

// PriceFilter bounds pricePerHour.
type PriceFilter struct {
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

// ListVariables are the arguments of the laptops query.
type ListVariables struct {
	Page      int          `json:"page"`
	Limit     int          `json:"limit"`
	SortBy    string       `json:"sortBy"`
	SortOrder string       `json:"sortOrder"`
	Filter    *PriceFilter `json:"filter,omitempty"`
	Search    string       `json:"search,omitempty"`
}

// normalized fills in the API defaults so equivalent requests share a cache entry.
func (v ListVariables) normalized() ListVariables {
	if v.Page < 1 {
		v.Page = 1
	}
	if v.Limit < 1 {
		v.Limit = 5
	}
	if strings.ToUpper(v.SortBy) == "PRICE_PER_HOUR" {
		v.SortBy = "PRICE_PER_HOUR"
	} else {
		v.SortBy = "NAME"
	}
	if strings.ToUpper(v.SortOrder) == "DESC" {
		v.SortOrder = "DESC"
	} else {
		v.SortOrder = "ASC"
	}
	v.Search = strings.TrimSpace(v.Search)
	if v.Filter != nil && v.Filter.MinPrice == nil && v.Filter.MaxPrice == nil {
		v.Filter = nil
	}
	return v
}

// CreateLaptopInput is the payload of createLaptop.
type CreateLaptopInput struct {
	Name          string  `json:"name"`
	Configuration string  `json:"configuration"`
	PricePerHour  float64 `json:"pricePerHour"`
	ImageURL      string  `json:"imageUrl,omitempty"`
}

// UpdateLaptopInput is the payload of updateLaptop. Nil fields are left untouched.
type UpdateLaptopInput struct {
	Name          *string  `json:"name,omitempty"`
	Configuration *string  `json:"configuration,omitempty"`
	PricePerHour  *float64 `json:"pricePerHour,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
}

const laptopFields = `
fragment LaptopFields on Laptop {
  id
  name
  configuration
  pricePerHour
  imageUrl
  createdAt
  updatedAt
}`

const getLaptopsQuery = `
query GetLaptops($page: Int, $limit: Int, $sortBy: LaptopSortBy, $sortOrder: SortOrder, $filter: LaptopFilterInput, $search: String) {
  laptops(page: $page, limit: $limit, sortBy: $sortBy, sortOrder: $sortOrder, filter: $filter, search: $search) {
    laptops { ...LaptopFields }
    totalCount
  }
}` + laptopFields

const getLaptopQuery = `
query GetLaptop($id: ID!) {
  laptop(id: $id) { ...LaptopFields }
}` + laptopFields

const createLaptopMutation = `
mutation CreateLaptop($input: CreateLaptopInput!) {
  createLaptop(input: $input) { ...LaptopFields }
}` + laptopFields

const updateLaptopMutation = `
mutation UpdateLaptop($id: ID!, $input: UpdateLaptopInput!) {
  updateLaptop(id: $id, input: $input) { ...LaptopFields }
}` + laptopFields

const deleteLaptopMutation = `
mutation DeleteLaptop($id: ID!) {
  deleteLaptop(id: $id) { id name }
}`

// ListLaptops returns one page of laptops.
func (c *Client) ListLaptops(ctx context.Context, vars ListVariables, policy FetchPolicy) (*LaptopPage, error) {
	vars = vars.normalized()

	if policy != NetworkOnly {
		if page, ok := c.cache.page(vars); ok {
			if policy == CacheAndNetwork {
				c.refreshList(vars)
			}
			return page, nil
		}
	}
	return c.fetchList(ctx, vars)
}

// fetchList queries the API and stores the result unless a newer one won.
func (c *Client) fetchList(ctx context.Context, vars ListVariables) (*LaptopPage, error) {
	seq := c.cache.begin()

	var data struct {
		Laptops LaptopPage `json:"laptops"`
	}
	if err := c.do(ctx, "GetLaptops", getLaptopsQuery, vars, &data); err != nil {
		return nil, err
	}

	page := &data.Laptops
	if !c.cache.putPage(vars, seq, page) {
		// a newer response for the same listing is already cached; prefer it
		if cached, ok := c.cache.page(vars); ok {
			return cached, nil
		}
	}
	return page, nil
}

func (c *Client) refreshList(vars ListVariables) {
	key := listKey(vars)
	go func() {
		_, err, _ := c.refresh.Do(key, func() (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
			defer cancel()
			return c.fetchList(ctx, vars)
		})
		if err != nil {
			c.logger.Warn("background laptop list refresh failed", zap.Error(err))
		}
	}()
}

// GetLaptop returns a single laptop.
func (c *Client) GetLaptop(ctx context.Context, id string, policy FetchPolicy) (*Laptop, error) {
	if policy != NetworkOnly {
		if l, ok := c.cache.laptop(id); ok {
			return &l, nil
		}
	}

	var data struct {
		Laptop *Laptop `json:"laptop"`
	}
	if err := c.do(ctx, "GetLaptop", getLaptopQuery, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Laptop == nil {
		return nil, &Error{Message: "Laptop not found", Code: "NOT_FOUND"}
	}
	c.cache.putLaptop(*data.Laptop)
	return data.Laptop, nil
}

// CreateLaptop creates a laptop and invalidates every cached list.
func (c *Client) CreateLaptop(ctx context.Context, in CreateLaptopInput) (*Laptop, error) {
	var data struct {
		CreateLaptop Laptop `json:"createLaptop"`
	}
	if err := c.do(ctx, "CreateLaptop", createLaptopMutation, map[string]interface{}{"input": in}, &data); err != nil {
		return nil, err
	}
	c.cache.putLaptop(data.CreateLaptop)
	c.cache.invalidateLists()
	return &data.CreateLaptop, nil
}

// UpdateLaptop updates a laptop, refreshes its cached entity and invalidates every cached list.
func (c *Client) UpdateLaptop(ctx context.Context, id string, in UpdateLaptopInput) (*Laptop, error) {
	var data struct {
		UpdateLaptop Laptop `json:"updateLaptop"`
	}
	vars := map[string]interface{}{"id": id, "input": in}
	if err := c.do(ctx, "UpdateLaptop", updateLaptopMutation, vars, &data); err != nil {
		return nil, err
	}
	c.cache.putLaptop(data.UpdateLaptop)
	c.cache.invalidateLists()
	return &data.UpdateLaptop, nil
}

// DeleteLaptop deletes a laptop, evicts it and invalidates every cached list.
func (c *Client) DeleteLaptop(ctx context.Context, id string) (*Laptop, error) {
	var data struct {
		DeleteLaptop Laptop `json:"deleteLaptop"`
	}
	if err := c.do(ctx, "DeleteLaptop", deleteLaptopMutation, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	c.cache.evictLaptop(id)
	c.cache.invalidateLists()
	return &data.DeleteLaptop, nil
}

// Invalidate drops what the cache knows about a laptop changed by another
// writer, together with every cached list.
func (c *Client) Invalidate(id string) {
	if id != "" {
		c.cache.evictLaptop(id)
	}
	c.cache.invalidateLists()
}

// Reset empties the cache.
func (c *Client) Reset() {
	c.cache.flush()
}
