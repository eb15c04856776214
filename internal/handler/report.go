package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hoangnecon/cafe-pos/internal/repository"
	"github.com/hoangnecon/cafe-pos/internal/utils"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

// ReportHandler serves revenue reports and the bill archive, all read
// from the append-only bills ledger.
type ReportHandler struct {
	BillRepo  *repository.BillRepo
	OrderRepo *repository.OrderRepo
}

// NewReportHandler constructs a ReportHandler and panics if any
// dependency is nil.
func NewReportHandler(billRepo *repository.BillRepo, orderRepo *repository.OrderRepo) *ReportHandler {
	if billRepo == nil || orderRepo == nil {
		panic("nil repository passed to NewReportHandler")
	}
	return &ReportHandler{BillRepo: billRepo, OrderRepo: orderRepo}
}

// reportDay resolves the optional ?date= query parameter to the
// half-open day range used by every revenue report.  A missing
// parameter means today.
func reportDay(c echo.Context) (string, string, error) {
	raw := c.QueryParam("date")
	t := time.Now()
	if raw != "" {
		parsed, err := utils.ParseISO(raw)
		if err != nil {
			return "", "", fmt.Errorf("invalid date %q", raw)
		}
		t = parsed
	}
	start, end := utils.DayRange(t)
	return start, end, nil
}

// DailyRevenue handles GET /api/revenue/daily.
func (h *ReportHandler) DailyRevenue(c echo.Context) error {
	start, end, err := reportDay(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	revenue, err := h.BillRepo.DailyRevenue(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute daily revenue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": start, "revenue": revenue})
}

// RevenueByTable handles GET /api/revenue/by-table.
func (h *ReportHandler) RevenueByTable(c echo.Context) error {
	start, end, err := reportDay(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rows, err := h.BillRepo.RevenueByTable(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute revenue by table"})
	}
	return c.JSON(http.StatusOK, rows)
}

// billRange resolves the optional ?startDate= and ?endDate= query
// parameters to a half-open range.  Both must be present or both
// absent; endDate is inclusive as a calendar day, so the range extends
// to the start of the following day.
func billRange(c echo.Context) (string, string, error) {
	rawStart := c.QueryParam("startDate")
	rawEnd := c.QueryParam("endDate")
	if rawStart == "" && rawEnd == "" {
		return "", "", nil
	}
	if rawStart == "" || rawEnd == "" {
		return "", "", errors.New("startDate and endDate must be given together")
	}
	startT, err := utils.ParseISO(rawStart)
	if err != nil {
		return "", "", fmt.Errorf("invalid startDate %q", rawStart)
	}
	endT, err := utils.ParseISO(rawEnd)
	if err != nil {
		return "", "", fmt.Errorf("invalid endDate %q", rawEnd)
	}
	start, _ := utils.DayRange(startT)
	_, end := utils.DayRange(endT)
	return start, end, nil
}

// ListBills handles GET /api/bills.
func (h *ReportHandler) ListBills(c echo.Context) error {
	start, end, err := billRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	bills, err := h.BillRepo.List(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bills"})
	}
	return c.JSON(http.StatusOK, bills)
}

// BillItems handles GET /api/bills/:id/items.  Line items are not
// copied onto bills, so this resolves the bill's order and returns
// that order's items.  For an order settled through several partial
// payments the later bills see only the lines still on the order.
func (h *ReportHandler) BillItems(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bill id"})
	}
	ctx := c.Request().Context()
	bill, err := h.BillRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bill"})
	}
	items, err := h.OrderRepo.ItemsByOrder(ctx, bill.OrderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order items"})
	}
	return c.JSON(http.StatusOK, items)
}

// ExportBills handles GET /api/reports/export-bills.  It streams the
// selected bills as an Excel workbook for the back office.
func (h *ReportHandler) ExportBills(c echo.Context) error {
	start, end, err := billRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	bills, err := h.BillRepo.List(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bills"})
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Bills"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build workbook"})
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Bill ID", "Order ID", "Table", "Payment Method", "Discount", "Total", "Paid At"}
	for i, hdr := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, hdr); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build workbook"})
		}
	}
	for row, b := range bills {
		values := []interface{}{b.ID, b.OrderID, b.TableName, b.PaymentMethod, b.DiscountAmount, b.TotalAmount, b.CreatedAt}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build workbook"})
			}
		}
	}

	filename := fmt.Sprintf("bills-%s.xlsx", utils.Today())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}
