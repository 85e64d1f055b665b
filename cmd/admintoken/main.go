// Command admintoken issues a bearer token for the admin menu routes, signed
// with the same JWT_SECRET the gateway verifies against.
package main

import (
	"flag"
	"fmt"
	"time"

	"juicebar-system/config"
	"juicebar-system/internal/logging"
	"juicebar-system/internal/utils"
)

func main() {
	userID := flag.Int64("user-id", 1, "user id stored in the token")
	username := flag.String("username", "admin", "username stored in the token")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.LoadConfig()
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: "text"})

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("JWT_SECRET must be set")
	}

	token, expiresAt, err := tokens.GenerateToken(*userID, *username, utils.RoleAdmin, *ttl)
	if err != nil {
		log.WithError(err).Fatal("Failed to sign token")
	}
	log.WithField("expires_at", expiresAt.Format(time.RFC3339)).Info("Issued admin token")
	fmt.Println(token)
}
