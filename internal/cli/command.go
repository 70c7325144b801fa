package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"SavePublish/internal/domain"
	"SavePublish/internal/usecase"
)

type callerFlags struct {
	actor      string
	admin      bool
	modified   bool
	uiLanguage string
}

func (f *callerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.actor, "actor", "", "Name of the invoking user")
	cmd.Flags().BoolVar(&f.admin, "admin", false, "Invoke as an administrator")
	cmd.Flags().BoolVar(&f.modified, "modified", false, "The editor page has unsaved changes")
	cmd.Flags().StringVar(&f.uiLanguage, "ui-language", "", "Language of prompts and alerts (default: i18n.defaultLanguage)")
}

func (f *callerFlags) invocation(defaultLang string) usecase.Invocation {
	lang := f.uiLanguage
	if lang == "" {
		lang = defaultLang
	}
	return usecase.Invocation{
		Modified:   f.modified,
		UILanguage: lang,
		Actor:      domain.Actor{Name: f.actor, IsAdministrator: f.admin},
	}
}

type itemFlags struct {
	id       string
	language string
	version  int
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "Item id")
	cmd.Flags().StringVar(&f.language, "language", "en", "Item language")
	cmd.Flags().IntVar(&f.version, "version", 1, "Item version")
	_ = cmd.MarkFlagRequired("id")
}

func (f *itemFlags) selection() []domain.ItemRef {
	return []domain.ItemRef{{ID: f.id, Language: f.language, Version: f.version}}
}

func newExecuteCmd(opts *globalOptions) *cobra.Command {
	var (
		item   itemFlags
		caller callerFlags
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Start a save & publish round trip for one item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			dec, err := application.Command().Execute(cmd.Context(), item.selection(), caller.invocation(application.DefaultLanguage()))
			if err != nil {
				return err
			}
			return printDecision(cmd.OutOrStdout(), opts.jsonOutput, dec)
		},
	}
	item.register(cmd)
	caller.register(cmd)
	return cmd
}

func newAnswerCmd(opts *globalOptions) *cobra.Command {
	var caller callerFlags
	cmd := &cobra.Command{
		Use:   "answer <session> <answer>",
		Short: "Answer the prompt of a suspended round trip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			inv := caller.invocation(application.DefaultLanguage())
			inv.Answer = args[1]
			dec, err := application.Command().Resume(cmd.Context(), args[0], inv)
			if err != nil {
				return err
			}
			return printDecision(cmd.OutOrStdout(), opts.jsonOutput, dec)
		},
	}
	caller.register(cmd)
	return cmd
}

func newStateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <session>",
		Short: "Show a suspended round trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			st, err := application.Command().Session(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, st)
			}
			fmt.Fprintf(out, "Session:  %s\n", st.SessionID)
			fmt.Fprintf(out, "Item:     %s\n", st.Request.Ref())
			fmt.Fprintf(out, "Phase:    %s\n", st.Phase)
			fmt.Fprintf(out, "Workflow: %s\n", st.Workflow)
			fmt.Fprintf(out, "Modified: %s\n", st.Modified)
			return nil
		},
	}
}

func newQueryStateCmd(opts *globalOptions) *cobra.Command {
	var (
		item   itemFlags
		caller callerFlags
	)
	cmd := &cobra.Command{
		Use:   "query-state",
		Short: "Report whether the menu action is hidden, disabled or enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			actor := caller.invocation("").Actor
			state, err := application.Command().QueryState(cmd.Context(), item.selection(), actor)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]domain.CommandState{"state": state})
			}
			fmt.Fprintln(cmd.OutOrStdout(), state)
			return nil
		},
	}
	item.register(cmd)
	cmd.Flags().StringVar(&caller.actor, "actor", "", "Name of the invoking user")
	cmd.Flags().BoolVar(&caller.admin, "admin", false, "Invoke as an administrator")
	return cmd
}

func printDecision(w io.Writer, jsonOutput bool, dec domain.Decision) error {
	if jsonOutput {
		return writeJSON(w, dec)
	}
	fmt.Fprintf(w, "Outcome: %s\n", dec.Outcome)
	if dec.SessionID != "" {
		fmt.Fprintf(w, "Session: %s\n", dec.SessionID)
	}
	fmt.Fprintf(w, "Phase:   %s\n", dec.Phase)
	if dec.Prompt != "" {
		fmt.Fprintf(w, "\n%s\n", dec.Prompt)
	}
	if dec.Alert != "" {
		fmt.Fprintf(w, "\n%s\n", dec.Alert)
	}
	return nil
}
