// Package handler defines the HTTP handlers of the POS backend.  Each
// handler groups the repositories it needs; multi-step mutations are
// orchestrated here over one database transaction so that a failure
// partway leaves no partial state behind.
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

// TableHandler serves the floor-plan table CRUD.
type TableHandler struct {
	TableRepo *repository.TableRepo
}

// NewTableHandler constructs a TableHandler and panics if the
// repository is nil.
func NewTableHandler(tableRepo *repository.TableRepo) *TableHandler {
	if tableRepo == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{TableRepo: tableRepo}
}

// pathID parses the :id (or other named) path parameter as a positive integer.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// ListTables handles GET /api/tables.
func (h *TableHandler) ListTables(c echo.Context) error {
	tables, err := h.TableRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tables"})
	}
	return c.JSON(http.StatusOK, tables)
}

// CreateTable handles POST /api/tables.  New tables always start as
// available regardless of any status in the request body.
func (h *TableHandler) CreateTable(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !model.ValidTableType(body.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be regular, vip or special"})
	}
	t := &model.Table{Name: body.Name, Type: body.Type}
	if err := h.TableRepo.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create table"})
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTableStatus handles PUT /api/tables/:id/status.  This is the
// manual override used by staff (e.g. marking a table reserved); the
// order lifecycle flips status through its own transactions.
func (h *TableHandler) UpdateTableStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidTableStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be available, occupied or reserved"})
	}
	ctx := c.Request().Context()
	if err := h.TableRepo.UpdateStatus(ctx, id, body.Status); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table status"})
	}
	t, err := h.TableRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load table"})
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTable handles DELETE /api/tables/:id.  A table that is
// occupied or reserved cannot be removed; that surfaces as 409 rather
// than the original UI's 404 so the client can tell the two cases
// apart.
func (h *TableHandler) DeleteTable(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	err = h.TableRepo.Delete(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table is not available"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete table"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
