package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwtauth "github.com/alanyang/prompt-vault/internal/adapter/jwt"
)

type tokenOptions struct {
	subject string
	email   string
	ttl     time.Duration
}

// NewTokenCommand creates the token command, which mints a development
// access token signed with the configured JWT secret.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token for a user id",
		Long: `Mint an HS256 access token signed with JWT_SECRET.

Intended for local development and tests; production tokens come from the
identity provider.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if err := cfg.ValidateAuth(); err != nil {
				return err
			}

			issuer, err := jwtauth.New(cfg.JWT.Secret, cfg.JWT.Audience, cfg.JWT.Issuer)
			if err != nil {
				return err
			}
			token, err := issuer.Issue(opts.subject, opts.email, opts.ttl)
			if err != nil {
				return fmt.Errorf("minting token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.subject, "sub", "", "user id (token subject)")
	cmd.Flags().StringVar(&opts.email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}
