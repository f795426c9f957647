package graph_test

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptopcatalog/internal/graph"
	"laptopcatalog/internal/metrics"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/repositories"
	"laptopcatalog/internal/services"
)

type laptopJSON struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Configuration string  `json:"configuration"`
	PricePerHour  float64 `json:"pricePerHour"`
	ImageURL      *string `json:"imageUrl"`
	CreatedAt     *string `json:"createdAt"`
	UpdatedAt     *string `json:"updatedAt"`
}

type errorJSON struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

type response struct {
	Data struct {
		Laptops *struct {
			Laptops    []laptopJSON `json:"laptops"`
			TotalCount int          `json:"totalCount"`
		} `json:"laptops"`
		Laptop       *laptopJSON `json:"laptop"`
		CreateLaptop *laptopJSON `json:"createLaptop"`
		UpdateLaptop *laptopJSON `json:"updateLaptop"`
		DeleteLaptop *laptopJSON `json:"deleteLaptop"`
	} `json:"data"`
	Errors []errorJSON `json:"errors"`
}

func setup(t *testing.T) (func(q string, vars map[string]interface{}) response, *repositories.MemoryLaptopRepository) {
	t.Helper()
	repo := repositories.NewMemoryLaptopRepository()
	service := services.NewLaptopService(repo, nil, nil)
	schema, err := graph.NewSchema(graph.NewResolver(service, metrics.New(), nil))
	require.NoError(t, err)

	return func(q string, vars map[string]interface{}) response {
		result := graph.Execute(context.Background(), schema, graph.Request{Query: q, Variables: vars})
		raw, err := json.Marshal(result)
		require.NoError(t, err)
		var resp response
		require.NoError(t, json.Unmarshal(raw, &resp))
		return resp
	}, repo
}

func seed(t *testing.T, repo *repositories.MemoryLaptopRepository) {
	t.Helper()
	require.NoError(t, repo.ReplaceAll(context.Background(), services.SampleLaptops()))
}

const listQuery = `query List($page: Int, $limit: Int, $sortBy: LaptopSortBy, $sortOrder: SortOrder, $filter: LaptopFilterInput, $search: String) {
  laptops(page: $page, limit: $limit, sortBy: $sortBy, sortOrder: $sortOrder, filter: $filter, search: $search) {
    laptops { id name pricePerHour }
    totalCount
  }
}`

func TestLaptopsQuery_FirstPageByPrice(t *testing.T) {
	do, repo := setup(t)
	seed(t, repo)

	resp := do(listQuery, map[string]interface{}{"limit": 5, "sortBy": "PRICE_PER_HOUR", "sortOrder": "ASC"})

	require.Empty(t, resp.Errors)
	require.NotNil(t, resp.Data.Laptops)
	assert.Equal(t, 10, resp.Data.Laptops.TotalCount)
	require.Len(t, resp.Data.Laptops.Laptops, 5)
	for i, l := range resp.Data.Laptops.Laptops {
		assert.Equal(t, float64(15000+1000*i), l.PricePerHour)
	}
}

func TestLaptopsQuery_Defaults(t *testing.T) {
	do, repo := setup(t)
	seed(t, repo)

	resp := do(`{ laptops { laptops { name } totalCount } }`, nil)

	require.Empty(t, resp.Errors)
	assert.Len(t, resp.Data.Laptops.Laptops, 5)
	assert.Equal(t, "Acer Aspire", resp.Data.Laptops.Laptops[0].Name)
}

func TestLaptopsQuery_NonPositivePagingFallsBack(t *testing.T) {
	do, repo := setup(t)
	seed(t, repo)

	resp := do(listQuery, map[string]interface{}{"page": 0, "limit": -3})

	require.Empty(t, resp.Errors)
	assert.Len(t, resp.Data.Laptops.Laptops, 5)
}

func TestLaptopsQuery_SearchAndFilter(t *testing.T) {
	do, repo := setup(t)
	seed(t, repo)

	resp := do(listQuery, map[string]interface{}{
		"search": "  BOOK ",
		"filter": map[string]interface{}{"minPrice": 16000, "maxPrice": 17500},
	})
	require.Empty(t, resp.Errors)
	assert.Equal(t, 1, resp.Data.Laptops.TotalCount)
	assert.Equal(t, "Asus VivoBook 14", resp.Data.Laptops.Laptops[0].Name)

	resp = do(listQuery, map[string]interface{}{"search": ".*"})
	require.Empty(t, resp.Errors)
	assert.Equal(t, 0, resp.Data.Laptops.TotalCount)

	// inverted range keeps only the lower bound
	resp = do(listQuery, map[string]interface{}{
		"filter": map[string]interface{}{"minPrice": 23000, "maxPrice": 100},
	})
	require.Empty(t, resp.Errors)
	assert.Equal(t, 2, resp.Data.Laptops.TotalCount)
}

func TestCreateLaptopMutation(t *testing.T) {
	do, _ := setup(t)

	resp := do(`mutation Create($input: CreateLaptopInput!) {
	  createLaptop(input: $input) { id name configuration pricePerHour imageUrl createdAt updatedAt }
	}`, map[string]interface{}{"input": map[string]interface{}{
		"name":          "  Framework 13 ",
		"configuration": "32GB Ram, 1TB SSD",
		"pricePerHour":  12.5,
	}})

	require.Empty(t, resp.Errors)
	created := resp.Data.CreateLaptop
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Framework 13", created.Name)
	assert.Equal(t, 12.5, created.PricePerHour)
	assert.Nil(t, created.ImageURL)
	require.NotNil(t, created.CreatedAt)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, *created.CreatedAt)

	resp = do(`query One($id: ID!) { laptop(id: $id) { name } }`, map[string]interface{}{"id": created.ID})
	require.Empty(t, resp.Errors)
	assert.Equal(t, "Framework 13", resp.Data.Laptop.Name)
}

func TestCreateLaptopMutation_ValidationError(t *testing.T) {
	do, _ := setup(t)

	resp := do(`mutation { createLaptop(input: {name: "ab", configuration: "Basic", pricePerHour: -5}) { id } }`, nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Validation failed: Laptop name must be at least 3 characters, Price cannot be negative", resp.Errors[0].Message)
	assert.Equal(t, "VALIDATION_ERROR", resp.Errors[0].Extensions["code"])
}

func TestUpdateLaptopMutation(t *testing.T) {
	do, repo := setup(t)
	laptop := &models.Laptop{Name: "Test", Configuration: "Basic", PricePerHour: models.Float(10)}
	require.NoError(t, repo.Insert(context.Background(), laptop))

	resp := do(`mutation Update($id: ID!, $input: UpdateLaptopInput!) {
	  updateLaptop(id: $id, input: $input) { id name pricePerHour configuration }
	}`, map[string]interface{}{"id": laptop.ID, "input": map[string]interface{}{"pricePerHour": 99}})

	require.Empty(t, resp.Errors)
	assert.Equal(t, 99.0, resp.Data.UpdateLaptop.PricePerHour)
	assert.Equal(t, "Test", resp.Data.UpdateLaptop.Name)
	assert.Equal(t, "Basic", resp.Data.UpdateLaptop.Configuration)

	resp = do(`mutation { updateLaptop(id: "00000000-0000-4000-8000-000000000000", input: {name: "Other"}) { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Laptop not found, cannot update", resp.Errors[0].Message)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
}

func TestDeleteLaptopMutation(t *testing.T) {
	do, repo := setup(t)
	laptop := &models.Laptop{Name: "Test", Configuration: "Basic", PricePerHour: models.Float(10)}
	require.NoError(t, repo.Insert(context.Background(), laptop))

	resp := do(`mutation Delete($id: ID!) { deleteLaptop(id: $id) { id name } }`, map[string]interface{}{"id": laptop.ID})
	require.Empty(t, resp.Errors)
	assert.Equal(t, laptop.ID, resp.Data.DeleteLaptop.ID)

	resp = do(`mutation { deleteLaptop(id: "invalid-id") { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Invalid Laptop ID format", resp.Errors[0].Message)
	assert.Equal(t, "INVALID_IDENTIFIER", resp.Errors[0].Extensions["code"])
}

func TestLaptopQuery_NotFound(t *testing.T) {
	do, _ := setup(t)

	resp := do(`{ laptop(id: "00000000-0000-4000-8000-000000000000") { id } }`, nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Laptop not found", resp.Errors[0].Message)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
	assert.Nil(t, resp.Data.Laptop)
}
