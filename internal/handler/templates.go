package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/middleware"
	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
)

// TemplateHandler serves CRUD for notification email templates.
// Templates flagged default are seeded at startup and cannot be
// deleted; everything else is plain CRUD with category validation.
type TemplateHandler struct {
	Store repository.Store
	Cache *middleware.Cache
	Log   *zap.Logger
}

// NewTemplateHandler constructs a TemplateHandler. Cache may be nil.
func NewTemplateHandler(store repository.Store, cache *middleware.Cache, log *zap.Logger) *TemplateHandler {
	if store == nil {
		panic("nil store passed to NewTemplateHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TemplateHandler{Store: store, Cache: cache, Log: log}
}

// List handles GET /api/templates?category=C. Without a category it
// returns every template.
func (h *TemplateHandler) List(c echo.Context) error {
	category := c.QueryParam("category")
	if category != "" && !model.ValidCategory(category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	templates, err := h.Store.GetEmailTemplates(c.Request().Context(), category)
	if err != nil {
		h.Log.Error("failed to list templates", zap.Error(err))
		return writeStoreError(c, err)
	}
	if templates == nil {
		templates = []model.EmailTemplate{}
	}
	return c.JSON(http.StatusOK, templates)
}

// Get handles GET /api/templates/:id.
func (h *TemplateHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	t, err := h.Store.GetEmailTemplate(c.Request().Context(), id)
	if err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// templateRequest is the body of create and update calls. The
// default flag is deliberately absent: it is owned by the seeder.
type templateRequest struct {
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Variables map[string]string `json:"variables"`
}

func (r templateRequest) validate() (string, bool) {
	switch {
	case r.Name == "":
		return "name is required", false
	case !model.ValidCategory(r.Category):
		return "unknown category", false
	case r.Subject == "":
		return "subject is required", false
	case r.Body == "":
		return "body is required", false
	}
	return "", true
}

// Create handles POST /api/templates.
func (h *TemplateHandler) Create(c echo.Context) error {
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := model.EmailTemplate{
		Name:      req.Name,
		Category:  req.Category,
		Subject:   req.Subject,
		Body:      req.Body,
		Variables: req.Variables,
	}
	if t.Variables == nil {
		t.Variables = map[string]string{}
	}
	ctx := c.Request().Context()
	if err := h.Store.CreateEmailTemplate(ctx, &t); err != nil {
		h.Log.Error("failed to create template", zap.Error(err))
		return writeStoreError(c, err)
	}
	h.Cache.Bump(ctx)
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /api/templates/:id.
func (h *TemplateHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := model.EmailTemplate{
		ID:        id,
		Name:      req.Name,
		Category:  req.Category,
		Subject:   req.Subject,
		Body:      req.Body,
		Variables: req.Variables,
	}
	if t.Variables == nil {
		t.Variables = map[string]string{}
	}
	ctx := c.Request().Context()
	if err := h.Store.UpdateEmailTemplate(ctx, &t); err != nil {
		return writeStoreError(c, err)
	}
	h.Cache.Bump(ctx)
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/templates/:id. Default templates are
// protected and answer 403.
func (h *TemplateHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	ctx := c.Request().Context()
	if err := h.Store.DeleteEmailTemplate(ctx, id); err != nil {
		return writeStoreError(c, err)
	}
	h.Cache.Bump(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "Template deleted successfully"})
}

// Preview handles POST /api/templates/:id/preview. The body is a
// map of variable values; the response carries the rendered subject
// and body so templates can be checked before use.
func (h *TemplateHandler) Preview(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	var vars map[string]string
	if err := c.Bind(&vars); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	t, err := h.Store.GetEmailTemplate(c.Request().Context(), id)
	if err != nil {
		return writeStoreError(c, err)
	}
	subject, body := t.Render(vars)
	return c.JSON(http.StatusOK, echo.Map{
		"subject": subject,
		"body":    body,
	})
}
