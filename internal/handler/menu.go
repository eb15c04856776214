package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/repository"
	"github.com/labstack/echo/v4"
)

// MenuHandler serves the menu catalog: collections and the items
// inside them.
type MenuHandler struct {
	CollectionRepo *repository.MenuCollectionRepo
	ItemRepo       *repository.MenuItemRepo
}

// NewMenuHandler constructs a MenuHandler and panics if any dependency
// is nil.
func NewMenuHandler(collectionRepo *repository.MenuCollectionRepo, itemRepo *repository.MenuItemRepo) *MenuHandler {
	if collectionRepo == nil || itemRepo == nil {
		panic("nil repository passed to NewMenuHandler")
	}
	return &MenuHandler{CollectionRepo: collectionRepo, ItemRepo: itemRepo}
}

// ListCollections handles GET /api/menu-collections.
func (h *MenuHandler) ListCollections(c echo.Context) error {
	collections, err := h.CollectionRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu collections"})
	}
	return c.JSON(http.StatusOK, collections)
}

// CreateCollection handles POST /api/menu-collections.
func (h *MenuHandler) CreateCollection(c echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	col := &model.MenuCollection{Name: body.Name, Description: body.Description, IsActive: true}
	if body.IsActive != nil {
		col.IsActive = *body.IsActive
	}
	if err := h.CollectionRepo.Create(c.Request().Context(), col); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create menu collection"})
	}
	return c.JSON(http.StatusCreated, col)
}

// UpdateCollection handles PUT /api/menu-collections/:id with a
// partial body; absent fields are left unchanged.
func (h *MenuHandler) UpdateCollection(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu collection id"})
	}
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil {
		trimmed := strings.TrimSpace(*body.Name)
		if trimmed == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		body.Name = &trimmed
	}
	col, err := h.CollectionRepo.Update(c.Request().Context(), id, body.Name, body.Description, body.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrMenuCollectionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update menu collection"})
	}
	return c.JSON(http.StatusOK, col)
}

// DeleteCollection handles DELETE /api/menu-collections/:id.  Deletion
// is refused with 409 while menu items still reference the collection.
func (h *MenuHandler) DeleteCollection(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu collection id"})
	}
	err = h.CollectionRepo.Delete(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMenuCollectionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu collection not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "menu collection still has linked items"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete menu collection"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListItems handles GET /api/menu-items with optional collectionId,
// searchTerm and category query filters combined with AND.
func (h *MenuHandler) ListItems(c echo.Context) error {
	var filter repository.MenuItemFilter
	if v := c.QueryParam("collectionId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid collectionId"})
		}
		filter.CollectionID = id
	}
	filter.SearchTerm = strings.TrimSpace(c.QueryParam("searchTerm"))
	filter.Category = strings.TrimSpace(c.QueryParam("category"))

	items, err := h.ItemRepo.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu items"})
	}
	return c.JSON(http.StatusOK, items)
}

// CreateItem handles POST /api/menu-items.
func (h *MenuHandler) CreateItem(c echo.Context) error {
	var body struct {
		Name             string  `json:"name"`
		Price            int64   `json:"price"`
		Category         string  `json:"category"`
		ImageURL         *string `json:"imageUrl"`
		Available        *bool   `json:"available"`
		MenuCollectionID uint64  `json:"menuCollectionId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be non-negative"})
	}
	if body.MenuCollectionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "menuCollectionId is required"})
	}
	ctx := c.Request().Context()
	// The FK would reject an unknown collection anyway; checking first
	// gives the client a 404 instead of a bare 500.
	if _, err := h.CollectionRepo.GetByID(ctx, body.MenuCollectionID); err != nil {
		if errors.Is(err, repository.ErrMenuCollectionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu collection"})
	}
	item := &model.MenuItem{
		Name:             body.Name,
		Price:            body.Price,
		Category:         body.Category,
		ImageURL:         body.ImageURL,
		Available:        true,
		MenuCollectionID: body.MenuCollectionID,
	}
	if body.Available != nil {
		item.Available = *body.Available
	}
	if err := h.ItemRepo.Create(ctx, item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create menu item"})
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateItem handles PUT /api/menu-items/:id with a partial body.
// Repricing here never touches existing order lines; they keep the
// price snapshot taken when they were added.
func (h *MenuHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	var body struct {
		Name             *string `json:"name"`
		Price            *int64  `json:"price"`
		Category         *string `json:"category"`
		ImageURL         *string `json:"imageUrl"`
		Available        *bool   `json:"available"`
		MenuCollectionID *uint64 `json:"menuCollectionId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Price != nil && *body.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be non-negative"})
	}
	item, err := h.ItemRepo.Update(c.Request().Context(), id, repository.MenuItemUpdate{
		Name:             body.Name,
		Price:            body.Price,
		Category:         body.Category,
		ImageURL:         body.ImageURL,
		Available:        body.Available,
		MenuCollectionID: body.MenuCollectionID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update menu item"})
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /api/menu-items/:id.  Existing order
// lines survive: their menu_item_id is set to NULL by the FK while the
// name/price snapshots stay.
func (h *MenuHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	err = h.ItemRepo.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete menu item"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
