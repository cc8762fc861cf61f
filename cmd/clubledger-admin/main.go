// Command clubledger-admin bootstraps API accounts against the configured
// backend, for first-time setup or recovering access.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"clubledger/internal/auth"
	"clubledger/internal/cli"
)

func main() {
	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "account password, min 8 characters (required)")
	role := flag.String("role", "admin", "account role: admin or viewer")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg)
	defer func() {
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := auth.NewService(store.Store, cfg.JWTSecret, cfg.TokenTTL)
	user, err := svc.Register(ctx, *email, *password, *role)
	if err != nil {
		logger.Error("Failed to create account", "error", err, "email", *email)
		os.Exit(1)
	}

	logger.Info("Account created", "id", user.ID, "email", user.Email, "role", user.Role)
}
