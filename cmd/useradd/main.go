// Command useradd provisions a user account with a bcrypt password hash.
//
//	useradd -username jdoe -email jdoe@example.com -department Finance -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/survey-service/internal/config"
	"github.com/spec-kit/survey-service/internal/observability"
	"github.com/spec-kit/survey-service/internal/persistence"
	"github.com/spec-kit/survey-service/internal/repository"
	"github.com/spec-kit/survey-service/internal/service"
)

func main() {
	var in service.ProvisionInput
	flag.StringVar(&in.Username, "username", "", "login name (required)")
	flag.StringVar(&in.Name, "name", "", "display name (defaults to username)")
	flag.StringVar(&in.Email, "email", "", "email address (required)")
	flag.StringVar(&in.Department, "department", "", "department name")
	flag.StringVar(&in.Role, "role", "user", "role; admin roles open the admin console")
	flag.StringVar(&in.Password, "password", "", "plain text password (required)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	authService := service.NewAuthService(cfg.Auth, repository.NewUserRepository(pg.PoolHandle()))
	user, err := authService.ProvisionUser(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "useradd: %v\n", err)
		pg.Close()
		os.Exit(1)
	}
	logger.Info("user provisioned", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
}
