// Command seed populates a fresh database with the default floor
// layout and a starter menu.  It is idempotent at the table level:
// when any tables already exist the seeder assumes the database is in
// use and exits without writing anything.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/hoangnecon/cafe-pos/internal/config"
	"github.com/hoangnecon/cafe-pos/internal/database"
	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate failed: %v", err)
	}

	tableRepo := repository.NewTableRepo(db)
	existing, err := tableRepo.List(ctx)
	if err != nil {
		log.Fatalf("seed check failed: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("database already has %d tables, nothing to seed", len(existing))
		return
	}

	for i := 1; i <= 16; i++ {
		t := &model.Table{Name: fmt.Sprintf("Bàn %d", i), Type: model.TableRegular}
		if err := tableRepo.Create(ctx, t); err != nil {
			log.Fatalf("seed table %q failed: %v", t.Name, err)
		}
	}
	// The takeaway pseudo-table lets walk-in sales go through the same
	// order flow as dine-in.
	takeaway := &model.Table{Name: "Mang về", Type: model.TableSpecial}
	if err := tableRepo.Create(ctx, takeaway); err != nil {
		log.Fatalf("seed takeaway table failed: %v", err)
	}

	collectionRepo := repository.NewMenuCollectionRepo(db)
	desc := "Thực đơn mặc định"
	coll := &model.MenuCollection{Name: "Thực đơn chính", Description: &desc, IsActive: true}
	if err := collectionRepo.Create(ctx, coll); err != nil {
		log.Fatalf("seed menu collection failed: %v", err)
	}

	itemRepo := repository.NewMenuItemRepo(db)
	starters := []struct {
		name     string
		price    int64
		category string
	}{
		{"Cà phê đen", 25000, "Cà phê"},
		{"Cà phê sữa", 30000, "Cà phê"},
		{"Bạc xỉu", 32000, "Cà phê"},
		{"Trà đào", 35000, "Trà"},
		{"Trà vải", 35000, "Trà"},
		{"Nước cam", 40000, "Nước ép"},
		{"Bánh mì que", 15000, "Đồ ăn"},
	}
	for _, s := range starters {
		item := &model.MenuItem{
			Name:             s.name,
			Price:            s.price,
			Category:         s.category,
			Available:        true,
			MenuCollectionID: coll.ID,
		}
		if err := itemRepo.Create(ctx, item); err != nil {
			log.Fatalf("seed menu item %q failed: %v", s.name, err)
		}
	}

	log.Printf("seeded 17 tables, 1 menu collection, %d menu items", len(starters))
}
