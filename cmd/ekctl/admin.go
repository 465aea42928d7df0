package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/electrokart/electrokart_api/internal/repository"
	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

func newCreateAdminCmd() *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing user and reset their password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			users := service.NewUserService(repository.NewUserRepository(db), utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))
			user, created, err := users.EnsureAdmin(ctx, email, username, password)
			if err != nil {
				return err
			}
			log.Info().Int("user_id", user.ID).Str("email", user.Email).Bool("created", created).Msg("admin account ready")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&username, "username", "", "username for a new account")
	cmd.Flags().StringVar(&password, "password", "", "password to set")
	return cmd
}
