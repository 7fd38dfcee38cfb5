package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"alfredoptarigan/intelliapply/internal/config"
	"alfredoptarigan/intelliapply/internal/middleware"
)

// Prints a bearer token for local development and for scripted clients.
func main() {
	userID := flag.String("user", "", "user id placed in the token subject")
	email := flag.String("email", "", "optional email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("❌ -user is required")
	}

	cfg := config.Load()
	token, err := middleware.IssueToken([]byte(cfg.Auth.Secret), *userID, *email, *ttl)
	if err != nil {
		log.Fatalf("❌ Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
