package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harentsoaR/medicore-api/internal/services"
	"github.com/harentsoaR/medicore-api/internal/storage"
	"github.com/harentsoaR/medicore-api/internal/utils"
)

// defaultAdmin fills the profile fields a bootstrap admin has no real value for.
func defaultAdmin(email, password string) services.RegisterInput {
	return services.RegisterInput{
		FirstName: "Default",
		LastName:  "Admin",
		Email:     email,
		Phone:     "0000000000",
		NIC:       "0000000000000",
		DOB:       "1970-01-01",
		Gender:    "Male",
		Password:  password,
	}
}

func seedAdmin(ctx context.Context, accounts *services.AccountService, in services.RegisterInput, log logrus.FieldLogger) error {
	created, err := accounts.EnsureAdmin(ctx, in)
	if err != nil {
		return err
	}
	if created {
		log.WithField("email", in.Email).Info("Created bootstrap admin")
	} else {
		log.Info("An admin already exists, skipping bootstrap")
	}
	return nil
}

func seedAdminCmd() *cobra.Command {
	in := defaultAdmin("", "")
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first admin account if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close(context.Background())

			if in.Email == "" {
				in.Email = e.cfg.DefaultAdminEmail
			}
			if in.Password == "" {
				in.Password = e.cfg.DefaultAdminPassword
			}
			if in.Email == "" || in.Password == "" {
				return errors.New("admin email and password are required (flags or DEFAULT_ADMIN_EMAIL/DEFAULT_ADMIN_PASSWORD)")
			}

			// Admins never carry an avatar, so no object storage is needed here.
			var avatars storage.AvatarStore
			accounts := services.NewAccountService(e.db.Users(), avatars, utils.NewPasswordHasher(e.cfg.BcryptCost), nil, e.log)
			return seedAdmin(cmd.Context(), accounts, in, e.log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "admin email")
	f.StringVar(&in.Password, "password", "", "admin password (min 8 characters)")
	f.StringVar(&in.FirstName, "first-name", in.FirstName, "admin first name")
	f.StringVar(&in.LastName, "last-name", in.LastName, "admin last name")
	f.StringVar(&in.Phone, "phone", in.Phone, "admin phone (10 digits)")
	return cmd
}
