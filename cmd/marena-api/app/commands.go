// Package app provides the command line of the Marena API server.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/marena/marena-api/pkg/versions"
)

// NewRootCmd creates the root command. levelVar, when not nil, is raised to
// debug by the --debug flag.
func NewRootCmd(levelVar *slog.LevelVar) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "marena-api",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Marena movie catalogue API server",
		Long: `Marena API server exposes a REST API to list, read, create, update and
delete movies, stored in memory or in PostgreSQL.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug && levelVar != nil {
				levelVar.Set(slog.LevelDebug)
			}
		},
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.Get()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}

			switch format {
			case "json":
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return err
			case "":
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
