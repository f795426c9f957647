package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"laptopcatalog/internal/graph"
	"laptopcatalog/internal/handlers"
	"laptopcatalog/internal/repositories"
	"laptopcatalog/internal/services"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and the GraphQL handler.
func setupApp(t *testing.T, graphiql bool) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.OpenGORM("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := repositories.NewGORMLaptopRepository(db)
	require.NoError(t, repo.ReplaceAll(context.Background(), services.SampleLaptops()))

	service := services.NewLaptopService(repo, nil, nil)
	schema, err := graph.NewSchema(graph.NewResolver(service, nil, nil))
	require.NoError(t, err)

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	handlers.NewGraphQLHandler(schema, nil, graphiql).RegisterRoutes(app)
	handlers.NewHealthHandler(service, time.Second, nil).RegisterRoutes(app)
	return app
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func postGraphQL(t *testing.T, app *fiber.App, body map[string]interface{}) (int, gqlResponse) {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	var out gqlResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestGraphQL_ListFirstPage(t *testing.T) {
	app := setupApp(t, false)

	status, resp := postGraphQL(t, app, map[string]interface{}{
		"query": `query ($limit: Int) { laptops(limit: $limit, sortBy: PRICE_PER_HOUR, sortOrder: ASC) { laptops { name pricePerHour } totalCount } }`,
		"variables": map[string]interface{}{"limit": 5},
	})
	assert.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.Errors)

	var page struct {
		Laptops []struct {
			Name         string  `json:"name"`
			PricePerHour float64 `json:"pricePerHour"`
		} `json:"laptops"`
		TotalCount int `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["laptops"], &page))
	assert.Equal(t, 10, page.TotalCount)
	require.Len(t, page.Laptops, 5)
	assert.Equal(t, "Dell Inspiron 14", page.Laptops[0].Name)
	assert.Equal(t, 19000.0, page.Laptops[4].PricePerHour)
}

func TestGraphQL_CreateUpdateDelete(t *testing.T) {
	app := setupApp(t, false)

	status, resp := postGraphQL(t, app, map[string]interface{}{
		"query": `mutation ($input: CreateLaptopInput!) { createLaptop(input: $input) { id name pricePerHour } }`,
		"variables": map[string]interface{}{"input": map[string]interface{}{
			"name":          "ThinkBook 16",
			"configuration": "16GB Ram, 512GB SSD",
			"pricePerHour":  0,
		}},
	})
	assert.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.Errors)

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["createLaptop"], &created))
	assert.NotEmpty(t, created.ID)

	_, resp = postGraphQL(t, app, map[string]interface{}{
		"query":     `mutation ($id: ID!) { updateLaptop(id: $id, input: {name: "ThinkBook 16 G6"}) { name } }`,
		"variables": map[string]interface{}{"id": created.ID},
	})
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"name":"ThinkBook 16 G6"}`, string(resp.Data["updateLaptop"]))

	_, resp = postGraphQL(t, app, map[string]interface{}{
		"query":     `mutation ($id: ID!) { deleteLaptop(id: $id) { id } }`,
		"variables": map[string]interface{}{"id": created.ID},
	})
	require.Empty(t, resp.Errors)

	_, resp = postGraphQL(t, app, map[string]interface{}{
		"query":     `query ($id: ID!) { laptop(id: $id) { id } }`,
		"variables": map[string]interface{}{"id": created.ID},
	})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
}

func TestGraphQL_ErrorCodes(t *testing.T) {
	app := setupApp(t, false)

	_, resp := postGraphQL(t, app, map[string]interface{}{
		"query": `mutation { deleteLaptop(id: "invalid-id") { id } }`,
	})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Invalid Laptop ID format", resp.Errors[0].Message)
	assert.Equal(t, "INVALID_IDENTIFIER", resp.Errors[0].Extensions["code"])

	_, resp = postGraphQL(t, app, map[string]interface{}{
		"query": `mutation { createLaptop(input: {name: "Test", configuration: "Basic", pricePerHour: -5}) { id } }`,
	})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Validation failed: Price cannot be negative", resp.Errors[0].Message)
	assert.Equal(t, "VALIDATION_ERROR", resp.Errors[0].Extensions["code"])
}

func TestGraphQL_GetRequest(t *testing.T) {
	app := setupApp(t, false)

	params := url.Values{}
	params.Set("query", `query ($search: String) { laptops(search: $search) { totalCount } }`)
	params.Set("variables", `{"search":"razer"}`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"data":{"laptops":{"totalCount":1}}}`, string(body))
}

func TestGraphQL_BadRequests(t *testing.T) {
	app := setupApp(t, false)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, _ := postGraphQL(t, app, map[string]interface{}{"query": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	req = httptest.NewRequest(http.MethodGet, "/graphql?query=%7Blaptops%7BtotalCount%7D%7D&variables=nope", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGraphiQL_OnlyInDebug(t *testing.T) {
	resp, err := setupApp(t, false).Test(httptest.NewRequest(http.MethodGet, "/graphiql", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = setupApp(t, true).Test(httptest.NewRequest(http.MethodGet, "/graphiql", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("server selection timeout") }

func TestHealth(t *testing.T) {
	resp, err := setupApp(t, false).Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["store"])

	core, logs := observer.New(zap.WarnLevel)
	app := fiber.New()
	handlers.NewHealthHandler(failingPinger{}, time.Second, zap.New(core)).RegisterRoutes(app)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body = map[string]string{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "disconnected", body["store"])
	assert.NotContains(t, string(raw), "server selection")

	// the driver detail stays in the log
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "server selection timeout", logs.All()[0].ContextMap()["error"])
}
