package organizer

import (
	"context"

	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/sequence"
)

// session is the reconciled state a mutation starts from.
type session struct {
	manifest *manifest.Manifest
	seq      *sequence.Sequence
}

// reconcile loads both stores and builds the sequence.
func (o *Organizer) reconcile(ctx context.Context) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := manifest.Load(o.manifestPath())
	if err != nil {
		return nil, err
	}
	index, err := sequence.Scan(o.ws.FS())
	if err != nil {
		return nil, err
	}
	seq, err := sequence.Build(m.Tasks, index)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("reconciled", "groups", seq.Len(), "folders", len(index))
	return &session{manifest: m, seq: seq}, nil
}

// plan starts a plan from the session's state.
func (s *session) plan() *plan {
	return newPlan(s.manifest.Tasks, s.seq.Folders())
}
