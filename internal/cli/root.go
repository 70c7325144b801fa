package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"SavePublish/internal/app"
	"SavePublish/internal/config"
	"SavePublish/internal/logging"
)

var version = "0.1.0"

type globalOptions struct {
	cfgFile    string
	jsonOutput bool
}

// Execute runs the savepublish command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "savepublish",
		Short:         "Save & publish command for the content-management host",
		Long:          `savepublish publishes a single item to every publishing target in every language after the user confirms, and refreshes it in the web search index.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "Config file path, YAML or TOML (default: $SAVEPUBLISH_CONFIG)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newVersionCmd(opts),
		newServeCmd(opts),
		newExecuteCmd(opts),
		newAnswerCmd(opts),
		newStateCmd(opts),
		newQueryStateCmd(opts),
		newAuditCmd(opts),
	)
	return root
}

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if opts.jsonOutput {
				_ = writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "savepublish version %s\n", version)
		},
	}
}

func (o *globalOptions) config() config.Config {
	if o.cfgFile != "" {
		return config.LoadFrom(o.cfgFile)
	}
	return config.Load()
}

// open builds the application with logs going to stderr so stdout stays
// parseable.
func (o *globalOptions) open(ctx context.Context, cmd *cobra.Command) (*app.Application, error) {
	cfg := o.config()
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return app.New(ctx, cfg, logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
