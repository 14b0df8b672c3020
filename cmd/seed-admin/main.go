package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coachhub/coachhub-api/internal/config"
	"github.com/coachhub/coachhub-api/internal/domain/admin"
	"github.com/coachhub/coachhub-api/internal/pkg/database"
	"github.com/coachhub/coachhub-api/internal/pkg/logger"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first super_admin account",
		Long: `Create a super_admin account directly in the database. The password
is read from SEED_ADMIN_PASSWORD. Existing accounts are left untouched.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd := os.Getenv("SEED_ADMIN_PASSWORD")
			if pwd == "" {
				return errors.New("SEED_ADMIN_PASSWORD is not set")
			}
			return run(cmd, email, pwd, name)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "super admin email")
	cmd.Flags().StringVar(&name, "name", "Super Admin", "display name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func run(cmd *cobra.Command, email, pwd, name string) error {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.ClosePostgres(db)

	svc := admin.NewService(admin.NewRepository(db), nil)
	a, created, err := svc.SeedSuperAdmin(ctx, email, pwd, name)
	if err != nil {
		return err
	}

	if !created {
		log.Info().Str("email", a.Email).Str("role", string(a.Role)).Msg("Admin already exists")
		return nil
	}
	log.Info().Str("email", a.Email).Str("id", a.ID.String()).Msg("Super admin created")
	return nil
}
