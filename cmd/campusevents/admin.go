package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"campusevents/internal/adapters/auth"
	"campusevents/internal/domain"
	"campusevents/internal/repository/sqlstore"
	"campusevents/internal/services"
)

func CreateAdminCmd() *cobra.Command {
	var in domain.SignUpInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account",
		Long:  "Create an ADMIN account. The password is read from the ADMIN_PASSWORD environment variable unless --password is given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if in.Password == "" {
				in.Password = os.Getenv("ADMIN_PASSWORD")
			}
			if in.Password == "" {
				return errors.New("a password is required: set ADMIN_PASSWORD or pass --password")
			}
			cfg, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			users := services.NewUserService(sqlstore.NewUserRepository(db), auth.NewBcryptHasher(cfg.BcryptCost), logger)
			admin, err := users.CreateAdmin(ctx, in)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			logger.InfoContext(ctx, "admin created", "user_id", admin.ID, "username", admin.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email address")
	cmd.Flags().StringVar(&in.FullName, "name", "Administrator", "admin full name")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password (prefer ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
