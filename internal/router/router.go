// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/hoangnecon/cafe-pos/internal/config"
	"github.com/hoangnecon/cafe-pos/internal/handler"
	"github.com/hoangnecon/cafe-pos/internal/middleware"
)

// Handlers bundles every handler the API mounts.  Keeping them in one
// struct keeps the main wiring readable as endpoints accumulate.
type Handlers struct {
	Table   *handler.TableHandler
	Menu    *handler.MenuHandler
	Order   *handler.OrderHandler
	Billing *handler.BillingHandler
	Report  *handler.ReportHandler
}

// Register mounts all routes on e.  The rate limiter applies to the
// whole API; the response cache wraps only the read routes whose
// payloads tolerate a few seconds of staleness.  rdb may be nil, in
// which case both middlewares pass requests straight through.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	cached := e.Group("/api", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// ---- Tables ----
	cached.GET("/tables", h.Table.ListTables)
	api.POST("/tables", h.Table.CreateTable)
	api.PUT("/tables/:id/status", h.Table.UpdateTableStatus)
	api.DELETE("/tables/:id", h.Table.DeleteTable)

	// ---- Menu ----
	cached.GET("/menu-collections", h.Menu.ListCollections)
	api.POST("/menu-collections", h.Menu.CreateCollection)
	api.PUT("/menu-collections/:id", h.Menu.UpdateCollection)
	api.DELETE("/menu-collections/:id", h.Menu.DeleteCollection)
	cached.GET("/menu-items", h.Menu.ListItems)
	api.POST("/menu-items", h.Menu.CreateItem)
	api.PUT("/menu-items/:id", h.Menu.UpdateItem)
	api.DELETE("/menu-items/:id", h.Menu.DeleteItem)

	// ---- Orders ----
	// The active-order lookup is intentionally uncached: the floor UI
	// polls it and must see item changes immediately.
	api.GET("/orders", h.Order.ListOrders)
	api.POST("/orders", h.Order.CreateOrder)
	api.GET("/tables/:id/active-order", h.Order.ActiveOrder)
	api.PUT("/orders/:id/note", h.Order.SetNote)
	api.PUT("/orders/:id/cancel", h.Order.CancelOrder)
	api.GET("/orders/:id/items", h.Order.ListItems)
	api.POST("/orders/:id/items", h.Order.AddItem)
	api.PUT("/order-items/:id", h.Order.UpdateItem)
	api.DELETE("/order-items/:id", h.Order.RemoveItem)

	// ---- Billing ----
	api.PUT("/orders/:id/complete", h.Billing.CompleteOrder)
	api.POST("/orders/:id/partial-payment", h.Billing.PartialPayment)

	// ---- Reports ----
	cached.GET("/revenue/daily", h.Report.DailyRevenue)
	cached.GET("/revenue/by-table", h.Report.RevenueByTable)
	cached.GET("/bills", h.Report.ListBills)
	api.GET("/bills/:id/items", h.Report.BillItems)
	api.GET("/reports/export-bills", h.Report.ExportBills)
}
