package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/leadsynch/leadsynch-backend/internal/config"
	"github.com/leadsynch/leadsynch-backend/internal/db"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalln("❌ Failed to connect to database:", err)
	}
	defer database.Close()

	seedFiles := []string{
		"seed/schema.sql",
		"seed/demo_data.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("failed to read %s: %v", file, err)
		}

		if _, err := database.Exec(string(content)); err != nil {
			log.Fatalf("failed to execute %s: %v", file, err)
		}
		fmt.Printf("Seeded: %s\n", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
