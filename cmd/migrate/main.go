package main

import (
	"log"

	"github.com/Cavel-Dev/Hurly-sub000/app/config"
	"github.com/Cavel-Dev/Hurly-sub000/app/database"
)

func main() {
	log.Println("Starting manual migration...")

	config.Init()
	db := config.GetDB()
	if db == nil {
		log.Fatal("Failed to get database instance")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Manual migration completed successfully!")
}
