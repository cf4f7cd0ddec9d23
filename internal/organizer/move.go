package organizer

import (
	"context"

	"github.com/roach88/mo/internal/position"
	"github.com/roach88/mo/internal/sequence"
)

// stashPrefix names the hidden folder a moving task waits in when a shift
// would otherwise rename another folder onto it.
const stashPrefix = ".mo-move-"

// Move relocates the task at from to to within one session.
//
// The source is removed exactly as Delete would (closing its gap or
// flattening its group), the destination is resolved against that
// already-updated table, and the folder is moved once at the end. If the
// destination folder already exists the move on disk is skipped with a
// warning and the manifest is still committed.
func (o *Organizer) Move(ctx context.Context, from, to string) (*Result, error) {
	op := o.begin(ctx, "move", from, to)
	return o.finish(ctx, op, o.move(ctx, op, from, to))
}

func (o *Organizer) move(ctx context.Context, op *operation, rawFrom, rawTo string) error {
	from, err := position.Parse(rawFrom)
	if err != nil {
		return err
	}
	to, err := position.Parse(rawTo)
	if err != nil {
		return err
	}

	s, err := o.reconcile(ctx)
	if err != nil {
		return err
	}
	p := s.plan()

	if from == to {
		if _, err := p.detach(from); err != nil {
			return err
		}
		op.res.Warnings = append(op.res.Warnings, "source and destination are the same; nothing to do")
		op.res.Tasks = s.manifest.Tasks
		return nil
	}

	d, err := p.detach(from)
	if err != nil {
		return err
	}
	if err := p.settle(d); err != nil {
		return err
	}
	if err := p.place(to, d.name); err != nil {
		return err
	}

	source := d.folder
	for _, st := range p.steps {
		if st.To == source {
			stash := stashPrefix + d.folder
			p.steps = append([]Step{{Kind: StepStash, Path: d.folder, To: stash}}, p.steps...)
			source = stash
			break
		}
	}

	target := sequence.Renumbered(d.folder, to)
	p.emit(Step{Kind: StepRelocate, Path: source, To: target})
	p.folders[to.String()] = target

	return o.run(ctx, op, s, p)
}
