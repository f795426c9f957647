package handlers

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"laptopcatalog/internal/graph"
)

// GraphQLHandler serves the catalog schema over HTTP.
type GraphQLHandler struct {
	schema   graphql.Schema
	logger   *zap.Logger
	graphiql bool
}

// NewGraphQLHandler creates a new GraphQLHandler. When graphiql is set the
// in-browser IDE is served at /graphiql.
func NewGraphQLHandler(schema graphql.Schema, logger *zap.Logger, graphiql bool) *GraphQLHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphQLHandler{
		schema:   schema,
		logger:   logger,
		graphiql: graphiql,
	}
}

// RegisterRoutes registers the GraphQL routes with the Fiber app.
func (h *GraphQLHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/graphql", h.HandlePost)
	router.Get("/graphql", h.HandleGet)
	if h.graphiql {
		router.Get("/graphiql", h.HandleGraphiQL)
	}
}

// HandlePost executes a JSON encoded GraphQL request.
func (h *GraphQLHandler) HandlePost(c *fiber.Ctx) error {
	var req graph.Request
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid graphql request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	return h.execute(c, req)
}

// HandleGet executes a query passed in the URL. Variables are a JSON object.
func (h *GraphQLHandler) HandleGet(c *fiber.Ctx) error {
	req := graph.Request{
		Query:         c.Query("query"),
		OperationName: c.Query("operationName"),
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Variables must be a JSON object",
				"error":   err.Error(),
			})
		}
	}
	return h.execute(c, req)
}

func (h *GraphQLHandler) execute(c *fiber.Ctx, req graph.Request) error {
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing query",
		})
	}

	result := graph.Execute(c.UserContext(), h.schema, req)
	if len(result.Errors) > 0 {
		h.logger.Debug("graphql request returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(result.Errors)))
	}
	return c.JSON(result)
}

// HandleGraphiQL serves the GraphiQL IDE.
func (h *GraphQLHandler) HandleGraphiQL(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(graphiQLPage)
}

const graphiQLPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Laptop catalog - GraphiQL</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css">
  <style>body { margin: 0; height: 100vh; } #graphiql { height: 100vh; }</style>
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: '/graphql' });
    ReactDOM.createRoot(document.getElementById('graphiql')).render(React.createElement(GraphiQL, { fetcher }));
  </script>
</body>
</html>`
