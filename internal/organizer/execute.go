package organizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/mo/internal/diag"
	"github.com/roach88/mo/internal/workspace"
)

// operation is one mutation in flight.
type operation struct {
	id  string
	res *Result

	// journal is nil for dry runs and when the begin record failed.
	journal Recorder
}

func (o *Organizer) begin(ctx context.Context, name string, args ...string) *operation {
	op := &operation{id: o.ids.Generate()}
	op.res = &Result{ID: op.id, Op: name, DryRun: o.dryRun}
	if o.recorder != nil && !o.dryRun {
		if err := o.recorder.Begin(ctx, op.id, name, args); err != nil {
			o.logger.Warn("journal begin failed", "op", op.id, "error", err)
		} else {
			op.journal = o.recorder
		}
	}
	o.logger.Debug("operation started", "op", op.id, "kind", name, "args", strings.Join(args, " "))
	return op
}

// finish closes the journal record and passes err through.
func (o *Organizer) finish(ctx context.Context, op *operation, err error) (*Result, error) {
	if op.journal != nil {
		if jerr := op.journal.Finish(ctx, op.id, err); jerr != nil {
			o.logger.Warn("journal finish failed", "op", op.id, "error", jerr)
		}
	}
	if err != nil {
		o.logger.Debug("operation failed", "op", op.id, "error", err)
		return nil, err
	}
	o.logger.Debug("operation finished", "op", op.id, "steps", len(op.res.Steps))
	return op.res, nil
}

func (o *Organizer) record(ctx context.Context, op *operation, s Step) {
	op.res.Steps = append(op.res.Steps, s)
	if op.journal == nil {
		return
	}
	if err := op.journal.Step(ctx, op.id, string(s.Kind), s.Path, s.To); err != nil {
		o.logger.Warn("journal step failed", "op", op.id, "error", err)
	}
}

// run asks the plan's confirmations, executes its steps and commits the
// manifest. A dry run only reports the plan.
func (o *Organizer) run(ctx context.Context, op *operation, s *session, p *plan) error {
	op.res.Warnings = append(op.res.Warnings, p.warnings...)
	op.res.Tasks = p.tasks

	if o.dryRun {
		for _, c := range p.confirms {
			op.res.Prompts = append(op.res.Prompts, c.prompt)
		}
		op.res.Steps = append(op.res.Steps, p.steps...)
		op.res.Steps = append(op.res.Steps, Step{Kind: StepCommit, Path: o.manifestFile})
		return nil
	}

	for _, c := range p.confirms {
		if !o.ws.Confirm(c.prompt) {
			return diag.New(c.code, "declined: %s", c.prompt).At(c.position).Named(c.name)
		}
	}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.apply(ctx, op, step); err != nil {
			return err
		}
	}

	s.manifest.Tasks = p.tasks
	if err := s.manifest.Save(o.manifestPath()); err != nil {
		return err
	}
	o.record(ctx, op, Step{Kind: StepCommit, Path: o.manifestFile})
	return nil
}

func (o *Organizer) apply(ctx context.Context, op *operation, s Step) error {
	o.logger.Debug("step", "op", op.id, "kind", s.Kind, "path", s.Path, "to", s.To)

	switch s.Kind {
	case StepRename:
		if err := o.backup(ctx, op, s.Path); err != nil {
			return err
		}
		if err := o.ws.Rename(s.Path, s.To); err != nil {
			return err
		}

	case StepRemove:
		if err := o.backup(ctx, op, s.Path); err != nil {
			return err
		}
		if err := o.ws.RemoveAll(s.Path); err != nil {
			return err
		}

	case StepStash:
		if err := o.ws.Move(s.Path, s.To); err != nil {
			return err
		}

	case StepRelocate:
		err := o.ws.Move(s.Path, s.To)
		if errors.Is(err, workspace.ErrDestinationExists) {
			msg := fmt.Sprintf("destination folder '%s' already exists; '%s' was not moved", s.To, s.Path)
			if strings.HasPrefix(s.Path, stashPrefix) {
				msg += fmt.Sprintf("; the task is parked in hidden folder '%s' and must be moved back by hand", s.Path)
			}
			o.logger.Warn(msg, "op", op.id)
			op.res.Warnings = append(op.res.Warnings, msg)
			o.record(ctx, op, Step{Kind: StepSkip, Path: s.Path, To: s.To})
			return nil
		}
		if err != nil {
			return err
		}

	case StepCreate:
		return o.create(ctx, op, s)

	default:
		return fmt.Errorf("unknown step kind %q", s.Kind)
	}

	o.record(ctx, op, s)
	return nil
}

func (o *Organizer) backup(ctx context.Context, op *operation, path string) error {
	loc, err := o.ws.Backup(path)
	if err != nil {
		return fmt.Errorf("back up %s: %w", path, err)
	}
	if loc != "" {
		o.record(ctx, op, Step{Kind: StepBackup, Path: path, To: loc})
	}
	return nil
}

// create makes a new task folder, scaffolding it when a scaffolder is set.
func (o *Organizer) create(ctx context.Context, op *operation, s Step) error {
	if o.scaffolder == nil {
		if err := o.ws.CreateDir(s.Path); err != nil {
			return err
		}
		o.record(ctx, op, s)
		return nil
	}

	actions, err := o.scaffolder.Task(o.ws, s.Path, s.Name)
	for _, a := range actions {
		kind := StepKind(a.Kind)
		step := Step{Kind: kind, Path: a.Path, To: a.Detail}
		if kind == StepCreate {
			step.Name = s.Name
		}
		o.record(ctx, op, step)
	}
	return err
}
