// Package cli implements the strings-admin maintenance tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Pretty bool
}

// NewRootCommand creates the root command for strings-admin.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "strings-admin",
		Short: "Maintenance tool for the string analyzer service",
		Long: `Offline helpers for the string analyzer service: compute the
properties of a value, check how a natural language query is interpreted,
prepare a SQLite database and mint bearer tokens for protected routes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", true, "indent JSON output")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewParseQueryCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func writeJSON(w io.Writer, opts *RootOptions, v interface{}) error {
	enc := json.NewEncoder(w)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
