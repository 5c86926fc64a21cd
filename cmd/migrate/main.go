package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/apexionhq/cx-copilot/internal/config"
	"github.com/apexionhq/cx-copilot/internal/database"
)

func main() {
	seed := flag.Bool("seed", false, "populate the business tables with sample data after migrating")
	migrationsPath := flag.String("path", "./migrations", "path to migration files")
	flag.Parse()

	cfg := config.NewDefaultLoader().MustLoad(context.Background())

	fmt.Println("=== Running Database Migrations ===")
	fmt.Printf("Connecting to database: %s@%s:%s/%s\n",
		cfg.Database.Username, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	if err := database.VerifyDatabase(cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Database); err != nil {
		log.Fatalf("Database connectivity failed: %v", err)
	}
	fmt.Println("✓ Database connectivity verified")

	migrationConfig := database.MigrationConfig{
		DatabaseURL:    cfg.Database.URL(),
		MigrationsPath: *migrationsPath,
	}

	if err := database.RunMigrations(migrationConfig); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("✓ Database migrations completed successfully!")

	if *seed {
		db, err := sql.Open("postgres", cfg.Database.ConnString())
		if err != nil {
			log.Fatalf("Failed to open database for seeding: %v", err)
		}
		defer db.Close()

		if err := database.Seed(db); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		fmt.Println("✓ Sample data seeded")
	}
}
