// Command devtoken prints a signed session token for local development.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"farmconnect/internal/auth"
	"farmconnect/internal/config"
)

func main() {
	userID := flag.String("user", "dev-user", "Subject (user id) of the token")
	email := flag.String("email", "dev@farmconnect.local", "Email claim")
	name := flag.String("name", "", "Optional display name claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("devtoken refuses to run against a production configuration")
	}

	token, err := auth.IssueToken(
		auth.Principal{ID: *userID, Email: *email, Name: *name},
		auth.TokenOptions{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      *ttl,
		},
	)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
