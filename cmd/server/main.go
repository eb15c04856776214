package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hoangnecon/cafe-pos/internal/config"
	"github.com/hoangnecon/cafe-pos/internal/database"
	"github.com/hoangnecon/cafe-pos/internal/handler"
	"github.com/hoangnecon/cafe-pos/internal/queue"
	"github.com/hoangnecon/cafe-pos/internal/repository"
	"github.com/hoangnecon/cafe-pos/internal/router"
	"github.com/hoangnecon/cafe-pos/internal/service"
)

func main() {
	// .env is optional; real deployments pass everything through the
	// environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("database migrate failed: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}

	tableRepo := repository.NewTableRepo(db)
	collectionRepo := repository.NewMenuCollectionRepo(db)
	itemRepo := repository.NewMenuItemRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	billRepo := repository.NewBillRepo(db)

	var pub *service.QueuePublisher
	if cfg.AMQPURL != "" {
		pub = service.NewQueuePublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartReceiptConsumer(); err != nil {
				log.Printf("receipt consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Table:   handler.NewTableHandler(tableRepo),
		Menu:    handler.NewMenuHandler(collectionRepo, itemRepo),
		Order:   handler.NewOrderHandler(orderRepo, tableRepo, itemRepo),
		Billing: handler.NewBillingHandler(orderRepo, tableRepo, billRepo, pub),
		Report:  handler.NewReportHandler(billRepo, orderRepo),
	}, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
