package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
)

// PropertyStore is the property repository as used by the handlers.
type PropertyStore interface {
	Create(ctx context.Context, p *model.Property) error
	GetByID(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, limit, offset int) ([]model.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Property, error)
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

type PropertyHandler struct {
	store PropertyStore
	log   *zap.Logger
}

func NewPropertyHandler(store PropertyStore, log *zap.Logger) *PropertyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PropertyHandler{store: store, log: log}
}

type createPropertyReq struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Location    string   `json:"location" validate:"max=255"`
	Price       float64  `json:"price" validate:"gt=0"`
	RentTypes   []string `json:"rentTypes" validate:"required,min=1,dive,oneof=hourly monthly yearly"`
}

// Create handles POST /v1/properties.  Any signed-in user may list a
// property and becomes its owner.
func (h *PropertyHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createPropertyReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p := &model.Property{
		OwnerID:     uid,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		Price:       req.Price,
	}
	seen := map[model.BookingType]bool{}
	for _, t := range req.RentTypes {
		bt := model.BookingType(t)
		if !seen[bt] {
			seen[bt] = true
			p.RentTypes = append(p.RentTypes, bt)
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.store.Create(ctx, p); err != nil {
		h.log.Error("create property failed", zap.String("owner_id", uid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create property failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /v1/properties?limit=&offset=.
func (h *PropertyHandler) List(c echo.Context) error {
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.store.List(ctx, limit, offset)
	if err != nil {
		h.log.Error("list properties failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list properties failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "limit": limit, "offset": offset})
}

// Get handles GET /v1/properties/:id.  Disabled listings are hidden.
func (h *PropertyHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.store.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		h.log.Error("get property failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get property failed"})
	}
	if p.IsDisabled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	return c.JSON(http.StatusOK, p)
}

// Mine handles GET /v1/my-properties.
func (h *PropertyHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.store.ListByOwner(ctx, uid)
	if err != nil {
		h.log.Error("list own properties failed", zap.String("owner_id", uid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list properties failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Disable handles PATCH /v1/admin/properties/:id/disable.
func (h *PropertyHandler) Disable(c echo.Context) error { return h.setDisabled(c, true) }

// Enable handles PATCH /v1/admin/properties/:id/enable.
func (h *PropertyHandler) Enable(c echo.Context) error { return h.setDisabled(c, false) }

func (h *PropertyHandler) setDisabled(c echo.Context, disabled bool) error {
	id := c.Param("id")
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.store.SetDisabled(ctx, id, disabled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		h.log.Error("set property state failed", zap.String("property_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update property failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "isDisabled": disabled})
}

func queryInt(c echo.Context, name string, def int) int {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
