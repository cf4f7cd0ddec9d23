package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/mo/internal/config"
	"github.com/roach88/mo/internal/journal"
	"github.com/roach88/mo/internal/organizer"
	"github.com/roach88/mo/internal/scaffold"
	"github.com/roach88/mo/internal/workspace"
)

// env is everything a command needs to operate on one project root.
type env struct {
	settings *config.Settings
	ws       *workspace.Local
	journal  *journal.Journal
}

// openEnv loads settings for root and builds the workspace. Flags override
// settings.
func openEnv(cmd *cobra.Command, opts *RootOptions, root string) (*env, error) {
	settings, err := config.Load(root)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load settings", err)
	}
	if opts.Yes {
		settings.AssumeYes = true
	}

	mode, err := workspace.ParseRenameMode(settings.Rename)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load settings", err)
	}

	var prompter workspace.Prompter = workspace.NewLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	if settings.AssumeYes {
		prompter = workspace.AssumeYes{}
	}

	wsOpts := []workspace.Option{workspace.WithPrompter(prompter), workspace.WithRenameMode(mode)}
	if !settings.Backup.Enabled {
		wsOpts = append(wsOpts, workspace.WithoutBackups())
	} else if settings.Backup.Dir != "" {
		wsOpts = append(wsOpts, workspace.WithBackupDir(settings.Backup.Dir))
	}

	ws, err := workspace.NewLocal(root, wsOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open project", err)
	}
	return &env{settings: settings, ws: ws}, nil
}

// organizer builds an Organizer, opening the journal unless disabled or
// dry-running. A journal that cannot be opened is logged and skipped.
func (e *env) organizer(opts *RootOptions) *organizer.Organizer {
	orgOpts := []organizer.Option{
		organizer.WithLogger(opts.log()),
		organizer.WithManifestFile(e.settings.ManifestFile),
		organizer.WithScaffolder(scaffold.New(e.settings.TemplatesDir)),
		organizer.DryRun(opts.DryRun),
	}

	if e.settings.Journal.Enabled && !opts.DryRun {
		j, err := journal.Open(e.settings.JournalPath(e.ws.Root()))
		if err != nil {
			opts.log().Warn("journal unavailable", "error", err)
		} else {
			e.journal = j
			orgOpts = append(orgOpts, organizer.WithRecorder(j))
		}
	}
	return organizer.New(e.ws, orgOpts...)
}

// readOnlyOrganizer builds an Organizer that never journals.
func (e *env) readOnlyOrganizer(opts *RootOptions) *organizer.Organizer {
	return organizer.New(e.ws,
		organizer.WithLogger(opts.log()),
		organizer.WithManifestFile(e.settings.ManifestFile),
	)
}

func (e *env) Close() {
	if e.journal != nil {
		e.journal.Close()
	}
}
