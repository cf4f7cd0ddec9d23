package organizer

import (
	"context"

	"github.com/roach88/mo/internal/position"
	"github.com/roach88/mo/internal/sequence"
)

// Insert adds a task named name at pos.
//
// A serial position at an occupied order shifts that group and everything
// after it up by one. A slot at an existing serial order converts the group
// to parallel, relabelling the current task onto slot b (or a when the new
// slot is b). The order may be at most one past the current end.
func (o *Organizer) Insert(ctx context.Context, pos, name string) (*Result, error) {
	op := o.begin(ctx, "insert", pos, name)
	return o.finish(ctx, op, o.insert(ctx, op, pos, name))
}

func (o *Organizer) insert(ctx context.Context, op *operation, rawPos, rawName string) error {
	pos, err := position.Parse(rawPos)
	if err != nil {
		return err
	}
	name, err := taskName(rawName)
	if err != nil {
		return err
	}

	s, err := o.reconcile(ctx)
	if err != nil {
		return err
	}
	p := s.plan()
	if err := p.place(pos, name); err != nil {
		return err
	}

	folder := sequence.FolderName(pos, name)
	p.emit(Step{Kind: StepCreate, Path: folder, Name: name})
	p.folders[pos.String()] = folder

	return o.run(ctx, op, s, p)
}
