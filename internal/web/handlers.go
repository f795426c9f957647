// Package web is the server-rendered administration frontend. It reads and
// writes the catalog exclusively through the GraphQL client.
package web

import (
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"laptopcatalog/internal/query"
	"laptopcatalog/internal/validation"
	"laptopcatalog/pkg/client"
)

// Catalog is the subset of the API client the pages use.
type Catalog interface {
	ListLaptops(ctx context.Context, vars client.ListVariables, policy client.FetchPolicy) (*client.LaptopPage, error)
	GetLaptop(ctx context.Context, id string, policy client.FetchPolicy) (*client.Laptop, error)
	CreateLaptop(ctx context.Context, in client.CreateLaptopInput) (*client.Laptop, error)
	UpdateLaptop(ctx context.Context, id string, in client.UpdateLaptopInput) (*client.Laptop, error)
	DeleteLaptop(ctx context.Context, id string) (*client.Laptop, error)
}

// Handler renders the laptop pages.
type Handler struct {
	catalog  Catalog
	tokens   *SubmissionTokens
	validate *validation.Validator
	logger   *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(catalog Catalog, tokens *SubmissionTokens, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:  catalog,
		tokens:   tokens,
		validate: validation.New(validation.Form),
		logger:   logger,
	}
}

// RegisterRoutes registers the page routes with the Fiber app.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/laptops") })

	laptops := router.Group("/laptops")
	laptops.Get("/", h.HandleList)
	laptops.Get("/new", h.HandleNew)
	laptops.Post("/", h.HandleCreate)
	laptops.Get("/:id", h.HandleDetail)
	laptops.Get("/:id/edit", h.HandleEdit)
	laptops.Post("/:id", h.HandleUpdate)
	laptops.Get("/:id/delete", h.HandleConfirmDelete)
	laptops.Post("/:id/delete", h.HandleDelete)
}

type sortLink struct {
	URL       string
	Indicator string
}

// HandleList renders the filtered, sorted, paginated list.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	state := ParseListState(queryValues(c))

	page, err := h.catalog.ListLaptops(c.UserContext(), state.Variables(), client.CacheAndNetwork)
	if err != nil {
		h.logger.Warn("failed to load laptops", zap.Error(err))
		return h.renderError(c, err, "Error loading laptops. Could not connect to the service.")
	}

	totalPages := state.TotalPages(page.TotalCount)
	data := fiber.Map{
		"Title":      "Manage Laptops",
		"State":      state,
		"Laptops":    page.Laptops,
		"TotalCount": page.TotalCount,
		"Page":       state.Page,
		"TotalPages": totalPages,
		"NameSort":   h.sortLink(state, query.SortByName),
		"PriceSort":  h.sortLink(state, query.SortByPricePerHour),
		"ClearURL":   state.ClearFilter().URL(),
	}
	if state.Page > 1 {
		data["PrevURL"] = state.WithPage(state.Page - 1).URL()
	}
	if state.Page < totalPages {
		data["NextURL"] = state.WithPage(state.Page + 1).URL()
	}
	return c.Render("list", data, "layouts/main")
}

func (h *Handler) sortLink(state ListState, by query.SortBy) sortLink {
	link := sortLink{URL: state.ToggleSort(by).URL()}
	if state.SortBy == by {
		link.Indicator = "▲"
		if state.SortOrder == query.Desc {
			link.Indicator = "▼"
		}
	}
	return link
}

// HandleDetail renders one laptop.
func (h *Handler) HandleDetail(c *fiber.Ctx) error {
	laptop, err := h.catalog.GetLaptop(c.UserContext(), c.Params("id"), client.CacheFirst)
	if err != nil {
		return h.renderError(c, err, "Could not load laptop details: "+err.Error())
	}
	return c.Render("detail", fiber.Map{
		"Title":  laptop.Name,
		"Laptop": laptop,
	}, "layouts/main")
}

// HandleNew renders the empty create form.
func (h *Handler) HandleNew(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, createForm(), LaptopForm{}, nil, "")
}

// HandleCreate validates and submits the create form.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	form := formFromRequest(c)
	meta := createForm()

	if !h.tokens.Consume(c.FormValue("token")) {
		return h.renderForm(c, fiber.StatusConflict, meta, form, nil, "This form has already been submitted.")
	}
	if errs := form.Validate(h.validate); len(errs) > 0 {
		return h.renderForm(c, fiber.StatusUnprocessableEntity, meta, form, errs, "")
	}

	if _, err := h.catalog.CreateLaptop(c.UserContext(), form.createInput()); err != nil {
		h.logger.Warn("failed to create laptop", zap.Error(err))
		status, errs, message := submitFailure(err, "Failed to create laptop: ")
		return h.renderForm(c, status, meta, form, errs, message)
	}
	return c.Redirect("/laptops", fiber.StatusSeeOther)
}

// HandleEdit renders the edit form pre-populated with the current record.
func (h *Handler) HandleEdit(c *fiber.Ctx) error {
	id := c.Params("id")
	laptop, err := h.catalog.GetLaptop(c.UserContext(), id, client.CacheFirst)
	if err != nil {
		return h.renderError(c, err, "Could not load laptop data: "+err.Error())
	}
	return h.renderForm(c, fiber.StatusOK, editForm(id, laptop.Name), formFromLaptop(laptop), nil, "")
}

// HandleUpdate validates and submits the edit form.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	form := formFromRequest(c)
	meta := editForm(id, c.FormValue("originalName"))

	if !h.tokens.Consume(c.FormValue("token")) {
		return h.renderForm(c, fiber.StatusConflict, meta, form, nil, "This form has already been submitted.")
	}
	if errs := form.Validate(h.validate); len(errs) > 0 {
		return h.renderForm(c, fiber.StatusUnprocessableEntity, meta, form, errs, "")
	}

	if _, err := h.catalog.UpdateLaptop(c.UserContext(), id, form.updateInput()); err != nil {
		h.logger.Warn("failed to update laptop", zap.String("id", id), zap.Error(err))
		status, errs, message := submitFailure(err, "Failed to update laptop: ")
		return h.renderForm(c, status, meta, form, errs, message)
	}
	return c.Redirect("/laptops/"+url.PathEscape(id), fiber.StatusSeeOther)
}

// HandleConfirmDelete asks for confirmation before deleting.
func (h *Handler) HandleConfirmDelete(c *fiber.Ctx) error {
	laptop, err := h.catalog.GetLaptop(c.UserContext(), c.Params("id"), client.CacheFirst)
	if err != nil {
		return h.renderError(c, err, "Could not load laptop details: "+err.Error())
	}
	return c.Render("confirm_delete", fiber.Map{
		"Title":  "Delete " + laptop.Name,
		"Laptop": laptop,
		"Token":  h.tokens.Issue(),
	}, "layouts/main")
}

// HandleDelete deletes the laptop and returns to the list.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if !h.tokens.Consume(c.FormValue("token")) {
		return c.Redirect("/laptops/"+url.PathEscape(id)+"/delete", fiber.StatusSeeOther)
	}
	if _, err := h.catalog.DeleteLaptop(c.UserContext(), id); err != nil {
		h.logger.Warn("failed to delete laptop", zap.String("id", id), zap.Error(err))
		return h.renderError(c, err, "Failed to delete laptop: "+err.Error())
	}
	return c.Redirect("/laptops", fiber.StatusSeeOther)
}

type formMeta struct {
	Title   string
	Action  string
	Submit  string
	Pending string
	ID      string
	// OriginalName keeps the edit title stable while the name field is being changed.
	OriginalName string
}

func createForm() formMeta {
	return formMeta{Title: "Add New Laptop", Action: "/laptops", Submit: "Create Laptop", Pending: "Creating..."}
}

func editForm(id, name string) formMeta {
	return formMeta{
		Title:        "Edit Laptop: " + name,
		Action:       "/laptops/" + url.PathEscape(id),
		Submit:       "Update Laptop",
		Pending:      "Updating...",
		ID:           id,
		OriginalName: name,
	}
}

func (h *Handler) renderForm(c *fiber.Ctx, status int, meta formMeta, form LaptopForm, errs map[string]string, message string) error {
	if errs == nil {
		errs = map[string]string{}
	}
	return c.Status(status).Render("form", fiber.Map{
		"Title":   meta.Title,
		"Meta":    meta,
		"Form":    form,
		"Errors":  errs,
		"Message": message,
		"Token":   h.tokens.Issue(),
	}, "layouts/main")
}

// submitFailure maps an API error onto the form: field errors go next to
// their inputs, anything else becomes the form message.
func submitFailure(err error, prefix string) (int, map[string]string, string) {
	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		return fiber.StatusInternalServerError, nil, prefix + "unexpected error"
	}
	if apiErr.Code == "VALIDATION_ERROR" && len(apiErr.Fields) > 0 {
		errs := make(map[string]string, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			errs[f.Field] = f.Message
		}
		return fiber.StatusUnprocessableEntity, errs, ""
	}
	return statusFor(err), nil, prefix + err.Error()
}

func (h *Handler) renderError(c *fiber.Ctx, err error, message string) error {
	return c.Status(statusFor(err)).Render("error", fiber.Map{
		"Title":   "Error",
		"Message": message,
		"BackURL": "/laptops",
	}, "layouts/main")
}

func statusFor(err error) int {
	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		return fiber.StatusInternalServerError
	}
	switch apiErr.Code {
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "INVALID_IDENTIFIER", "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case client.CodeNetwork:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func queryValues(c *fiber.Ctx) url.Values {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return values
}
