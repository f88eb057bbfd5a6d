package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/Cavel-Dev/Hurly-sub000/app/config"
	"github.com/Cavel-Dev/Hurly-sub000/app/database"
	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
)

func main() {
	email := flag.String("email", "", "user email")
	name := flag.String("name", "", "display name")
	password := flag.String("password", "", "initial password")
	role := flag.String("role", "admin", "user role")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Usage: adduser -email <email> -password <password> [-name <name>] [-role <role>]")
	}

	config.Init()
	db := config.GetDB()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}
	defer db.Close()

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    *email,
		Password: hashed,
		Name:     *name,
		Role:     *role,
	}
	if err := database.CreateUser(db, user); err != nil {
		log.Fatalf("Error creating user: %v", err)
	}

	fmt.Printf("User created successfully: %s (%s)\n", user.Name, user.Email)
}
