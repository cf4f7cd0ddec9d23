package organizer

import (
	"context"

	"github.com/roach88/mo/internal/sequence"
)

// Report is the outcome of a successful validation.
type Report struct {
	Model    string
	Sequence *sequence.Sequence
	Drift    []DriftNote
}

// DriftNote records a task whose folder name differs from its configured
// name.
type DriftNote struct {
	Position string         `json:"position"`
	Name     string         `json:"name"`
	Folder   string         `json:"folder"`
	Expected string         `json:"expected"`
	Kind     sequence.Drift `json:"kind"`
}

// Validate reconciles the manifest with the folder tree. Any inconsistency
// is returned as a diag.Error; drift in folder names is reported, not
// rejected.
func (o *Organizer) Validate(ctx context.Context) (*Report, error) {
	s, err := o.reconcile(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{Model: s.manifest.Model, Sequence: s.seq}
	for _, t := range s.seq.Tasks() {
		kind := t.Drift()
		if kind == sequence.DriftNone {
			continue
		}
		r.Drift = append(r.Drift, DriftNote{
			Position: t.Position.String(),
			Name:     t.Name,
			Folder:   t.Folder,
			Expected: t.ExpectedFolder(),
			Kind:     kind,
		})
		o.logger.Debug("folder name drift", "position", t.Position.String(), "folder", t.Folder, "kind", kind)
	}
	return r, nil
}
