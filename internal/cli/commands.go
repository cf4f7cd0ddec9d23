package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/mo/internal/journal"
	"github.com/roach88/mo/internal/organizer"
	"github.com/roach88/mo/internal/scaffold"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new model project",
		Long: `Create a project directory named after the model (spaces become
underscores) holding wrappers/, config/, tests/, utils/, tox.ini,
requirements.txt, build.sh and an empty Mo.yaml.

Existing files are only replaced after confirmation and are backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, rootOpts, model)
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "name of the model (required)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func runInit(cmd *cobra.Command, opts *RootOptions, model string) error {
	f := opts.formatter(cmd)
	if model == "" {
		return f.Fail(NewExitError(ExitCommandError, "model name must not be empty"))
	}

	e, err := openEnv(cmd, opts, opts.Dir)
	if err != nil {
		return f.Fail(err)
	}
	defer e.Close()

	dir, actions, err := scaffold.New(e.settings.TemplatesDir).Init(e.ws, model)
	if err != nil {
		return f.Fail(err)
	}
	abs := filepath.Join(e.ws.Root(), dir)

	if f.Format == "json" {
		return f.Success(map[string]any{"model": model, "dir": abs, "actions": actions})
	}
	fmt.Fprintf(f.Writer, "%s model '%s' in %s\n", f.style().ok.Render("✓ Initialized"), model, abs)
	f.writeActions(f.Writer, actions)
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that Mo.yaml and the task folders agree",
		Long: `Rebuild the task sequence from Mo.yaml and the folder tree and report
the first inconsistency found. On success, print every group with its
neighbours and note folders whose names drifted from Mo.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts)
		},
	}
}

func runValidate(cmd *cobra.Command, opts *RootOptions) error {
	f := opts.formatter(cmd)
	e, err := openEnv(cmd, opts, opts.Dir)
	if err != nil {
		return f.Fail(err)
	}
	defer e.Close()

	report, err := e.readOnlyOrganizer(opts).Validate(cmd.Context())
	if err != nil {
		return f.Fail(err)
	}

	if f.Format == "json" {
		return f.Success(newReportView(report))
	}
	f.writeReport(f.Writer, report)
	return nil
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var pos, name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task at a position",
		Long: `Add a task. A serial position at an occupied order shifts that group and
every later one up by one. A slot at an order holding a serial task converts
the group to parallel.`,
		Example: `  mo add --pos 2 --name train
  mo add --pos 3a --name train_large`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, rootOpts, fmt.Sprintf("task '%s' at %s", name, pos),
				func(org *organizer.Organizer) (*organizer.Result, error) {
					return org.Insert(cmd.Context(), pos, name)
				})
		},
	}
	cmd.Flags().StringVar(&pos, "pos", "", "position for the task (e.g. 1 or 3a)")
	cmd.Flags().StringVar(&name, "name", "", "name of the task")
	_ = cmd.MarkFlagRequired("pos")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var pos string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a task and its folder",
		Long: `Delete the task at a full position (3 for a serial task, 3b for a slot).
Later groups shift down to close the gap; a parallel group left with one
task is flattened back to serial.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, rootOpts, "task at "+pos,
				func(org *organizer.Organizer) (*organizer.Result, error) {
					return org.Delete(cmd.Context(), pos)
				})
		},
	}
	cmd.Flags().StringVar(&pos, "pos", "", "full position of the task (e.g. 3 or 3b)")
	_ = cmd.MarkFlagRequired("pos")
	return cmd
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a task to another position",
		Long: `Move a task. The source is removed first (closing its gap or flattening
its group) and the destination is resolved against the result, so the
destination may be at most one past the remaining group count.`,
		Example: `  mo move --from 3a --to 4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, rootOpts, fmt.Sprintf("task from %s to %s", from, to),
				func(org *organizer.Organizer) (*organizer.Result, error) {
					return org.Move(cmd.Context(), from, to)
				})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source position (e.g. 3a or 2)")
	cmd.Flags().StringVar(&to, "to", "", "destination position (e.g. 4 or 5a)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runMutation(cmd *cobra.Command, opts *RootOptions, summary string, do func(*organizer.Organizer) (*organizer.Result, error)) error {
	f := opts.formatter(cmd)
	e, err := openEnv(cmd, opts, opts.Dir)
	if err != nil {
		return f.Fail(err)
	}
	defer e.Close()

	res, err := do(e.organizer(opts))
	if err != nil {
		return f.Fail(err)
	}

	if f.Format == "json" {
		return f.Success(newResultView(res))
	}
	f.writeResult(f.Writer, res, summary)
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent operations from the journal",
		Long: `List recent operations with the steps they ran, newest first.

An operation shown as interrupted stopped part way; its steps show which
folders were already renamed so the project can be repaired by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of operations to show (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *RootOptions, limit int) error {
	f := opts.formatter(cmd)
	e, err := openEnv(cmd, opts, opts.Dir)
	if err != nil {
		return f.Fail(err)
	}
	defer e.Close()

	j, err := journal.Open(e.settings.JournalPath(e.ws.Root()))
	if err != nil {
		return f.Fail(WrapExitError(ExitCommandError, "open journal", err))
	}
	defer j.Close()

	ops, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return f.Fail(err)
	}

	if f.Format == "json" {
		if ops == nil {
			ops = []journal.Operation{}
		}
		return f.Success(ops)
	}
	f.writeHistory(f.Writer, ops)
	return nil
}
