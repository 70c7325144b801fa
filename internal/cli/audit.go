package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"SavePublish/internal/infrastructure/report"
)

func newAuditCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the publish audit trail",
	}
	cmd.AddCommand(newAuditListCmd(opts), newAuditExportCmd(opts))
	return cmd
}

func newAuditListCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest audit records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			entries, err := application.Audit().ListAudit(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTOR\tMESSAGE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.Actor, e.Message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of records, 0 for all")
	return cmd
}

func newAuditExportCmd(opts *globalOptions) *cobra.Command {
	var (
		out   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the audit trail to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			entries, err := application.Audit().ListAudit(cmd.Context(), limit)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := report.WriteAudit(f, entries); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d audit records to %s\n", len(entries), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "publish-audit.xlsx", "Output workbook path")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of records, 0 for all")
	return cmd
}
