package organizer

import (
	"context"

	"github.com/roach88/mo/internal/diag"
	"github.com/roach88/mo/internal/position"
)

// Delete removes the task at pos and its folder.
//
// Removing a serial group closes the gap by shifting later groups down.
// Removing a slot that leaves one task flattens the group back to serial.
// Declining the folder deletion aborts with OPERATION_DECLINED.
func (o *Organizer) Delete(ctx context.Context, pos string) (*Result, error) {
	op := o.begin(ctx, "delete", pos)
	return o.finish(ctx, op, o.delete(ctx, op, pos))
}

func (o *Organizer) delete(ctx context.Context, op *operation, rawPos string) error {
	pos, err := position.Parse(rawPos)
	if err != nil {
		return err
	}

	s, err := o.reconcile(ctx)
	if err != nil {
		return err
	}
	p := s.plan()

	d, err := p.detach(pos)
	if err != nil {
		return err
	}
	p.confirm(diag.OperationDeclined, pos, d.name, "Delete folder '%s'?", d.folder)
	p.emit(Step{Kind: StepRemove, Path: d.folder})

	if err := p.settle(d); err != nil {
		return err
	}
	return o.run(ctx, op, s, p)
}
