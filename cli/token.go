package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/senpow/italy-restaurant-booking/config"
	"github.com/senpow/italy-restaurant-booking/utils"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	UserID string
	Name   string
	Email  string
	Admin  bool
	TTL    time.Duration
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a JWT for local testing",
		Long: `Mint a JWT signed with the configured JWT_SECRET.

Sign-in itself is handled by the identity provider, this command only exists
to call the API during development.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token, err := mintToken(utils.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, 0), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.UserID, "user", "u", "", "user id (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().BoolVar(&opts.Admin, "admin", false, "grant the admin role")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func mintToken(jwtManager *utils.JWTManager, opts *tokenOptions) (string, error) {
	if opts.UserID == "" {
		return "", errors.New("--user is required")
	}
	if opts.TTL <= 0 {
		return "", errors.New("--ttl must be positive")
	}
	return jwtManager.GenerateTokenWithTTL(opts.UserID, opts.Name, opts.Email, opts.Admin, opts.TTL)
}
