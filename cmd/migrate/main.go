package main

import (
	"fmt"
	"log"

	"waterlog/internal/config"
	"waterlog/internal/database"
)

// migrate applies the schema and seeds without starting the API
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("Seeding users failed: %v", err)
	}
	if cfg.SeedDemoData {
		if err := database.SeedDemoData(db); err != nil {
			log.Fatalf("Seeding demo data failed: %v", err)
		}
	}

	var result struct {
		Users   int `db:"users"`
		Drivers int `db:"drivers"`
		Trucks  int `db:"trucks"`
		Clients int `db:"clients"`
		Routes  int `db:"routes"`
		Debts   int `db:"debts"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM users WHERE role = 'CHOFER') AS drivers,
			(SELECT COUNT(*) FROM trucks) AS trucks,
			(SELECT COUNT(*) FROM clients) AS clients,
			(SELECT COUNT(*) FROM route_manifests) AS routes,
			(SELECT COUNT(*) FROM debt_records WHERE status = 'PENDING') AS debts
	`
	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:                   %d\n", result.Users)
	fmt.Printf("Drivers:                 %d\n", result.Drivers)
	fmt.Printf("Trucks:                  %d\n", result.Trucks)
	fmt.Printf("Clients:                 %d\n", result.Clients)
	fmt.Printf("Routes:                  %d\n", result.Routes)
	fmt.Printf("Pending debts:           %d\n", result.Debts)
	fmt.Println("============================================================")
}
