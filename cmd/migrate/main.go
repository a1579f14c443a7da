package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"expensetracker/backend/config"
	"expensetracker/backend/database"
	"expensetracker/backend/migrations"
	"expensetracker/backend/security"
	"expensetracker/backend/services"
)

func main() {
	seedUser := flag.String("seed-user", "", "Insert demo transactions for this email (development only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := migrations.RunMigrations(db.DB, db.Driver); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	fmt.Println("Migrations completed successfully!")

	if *seedUser == "" {
		return
	}

	sealer, err := security.NewSealer(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize encryption: %v", err)
	}
	txStore := database.NewTransactionStore(db)
	composer := services.NewComposer(cfg.App.Location())
	transactions := services.NewTransactionService(txStore, composer, services.NewPaginator(cfg.Pagination, txStore, sealer))

	n, err := services.SeedDemoData(context.Background(), database.NewUserStore(db), transactions, *seedUser)
	if err != nil {
		db.Close()
		log.Printf("Failed to seed demo data: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d demo transactions for %s\n", n, *seedUser)
}
