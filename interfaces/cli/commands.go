package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"string-analyzer/domain/core/valueobjects"
	"string-analyzer/domain/services/nlquery"
	"string-analyzer/infrastructure/persistence/sqlite"
	"string-analyzer/pkg/auth"
)

// AnalyzeResult is the output of the analyze command.
type AnalyzeResult struct {
	ID         string                  `json:"id"`
	Value      string                  `json:"value"`
	Properties valueobjects.Properties `json:"properties"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <value>",
		Short: "Print the properties the service would store for a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := strings.TrimSpace(args[0])
			if value == "" {
				return fmt.Errorf("value must not be blank")
			}
			return writeJSON(cmd.OutOrStdout(), rootOpts, AnalyzeResult{
				ID:         valueobjects.NewStringID(value).String(),
				Value:      value,
				Properties: valueobjects.Analyze(value),
			})
		},
	}
}

// NewParseQueryCommand creates the parse-query command.
func NewParseQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-query <query>",
		Short: "Show the filter a natural language query maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			filter, err := nlquery.Parse(query)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rootOpts, map[string]interface{}{
				"original":       query,
				"parsed_filters": filter,
			})
		},
	}
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate <sqlite-path>",
		Short: "Create or upgrade a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			applied, err := sqlite.Migrate(ctx, args[0])
			if err != nil {
				return err
			}
			if applied == nil {
				applied = []string{}
			}
			return writeJSON(cmd.OutOrStdout(), rootOpts, map[string]interface{}{
				"database": args[0],
				"applied":  applied,
				"count":    len(applied),
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "maximum time to spend migrating")

	return cmd
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		secret  string
		issuer  string
		expiry  time.Duration
		roles   []string
		subject string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token accepted by the protected routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := auth.NewJWTGenerator(auth.JWTConfig{
				SecretKey: secret,
				Issuer:    issuer,
				Expiry:    expiry,
			})
			if err != nil {
				return err
			}
			token, err := gen.GenerateToken(subject, roles)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rootOpts, map[string]string{"token": token})
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret (JWT_SECRET on the server)")
	cmd.Flags().StringVar(&issuer, "issuer", "string-analyzer", "token issuer")
	cmd.Flags().DurationVar(&expiry, "expiry", time.Hour, "token lifetime")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role to grant, may be repeated")
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}
