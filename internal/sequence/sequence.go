// Package sequence reconciles the configuration document with the folder
// tree.
//
// Build is the single place where "is this project consistent" is decided.
// It takes two independent read-only views (the configured task table and
// the scanned folder index) and either returns the ordered sequence of task
// groups or a diag.Error describing the first divergence found.
//
// Config wins for existence and order; disk wins for the folder name. A
// folder whose free-text name differs from the configured name is accepted
// and reported as drift.
//
// Groups are held in a slice indexed by order. Prev and Next are computed on
// demand, so the sequence owns its groups and there are no back-pointers to
// maintain.
package sequence

import (
	"slices"

	"github.com/roach88/mo/internal/diag"
	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/position"
)

// Task is one configured task with its reconciled folder.
type Task struct {
	Position position.Position

	// Name is the configured task name.
	Name string

	// Folder is the folder name actually found on disk.
	Folder string
}

// ExpectedFolder is the folder name derived from position and configured name.
func (t Task) ExpectedFolder() string {
	return FolderName(t.Position, t.Name)
}

// Drift classifies how the folder on disk differs from the configured name.
func (t Task) Drift() Drift {
	f, ok := ParseFolder(t.Folder)
	if !ok {
		return DriftRenamed
	}
	return classify(t.Name, f.Suffix)
}

// Group is the set of tasks sharing one order.
type Group struct {
	Order int

	// Tasks holds one serial task or the parallel slots sorted by letter.
	Tasks []Task
}

// IsParallel reports whether the group is made of lettered slots.
func (g *Group) IsParallel() bool {
	return len(g.Tasks) > 0 && g.Tasks[0].Position.IsParallel()
}

// Slot returns the task in slot, if present.
func (g *Group) Slot(slot string) (Task, bool) {
	for _, t := range g.Tasks {
		if t.Position.Slot == slot {
			return t, true
		}
	}
	return Task{}, false
}

// Sequence is the validated, ordered list of task groups.
type Sequence struct {
	groups []*Group
}

// Len returns the number of groups.
func (s *Sequence) Len() int {
	return len(s.groups)
}

// Groups returns the groups in order.
func (s *Sequence) Groups() []*Group {
	return s.groups
}

// Group returns the group at order, or nil.
func (s *Sequence) Group(order int) *Group {
	if order < 1 || order > len(s.groups) {
		return nil
	}
	return s.groups[order-1]
}

// Prev returns the group before g, or nil at the head.
func (s *Sequence) Prev(g *Group) *Group {
	return s.Group(g.Order - 1)
}

// Next returns the group after g, or nil at the tail.
func (s *Sequence) Next(g *Group) *Group {
	return s.Group(g.Order + 1)
}

// Tasks returns every task in position order.
func (s *Sequence) Tasks() []Task {
	var out []Task
	for _, g := range s.groups {
		out = append(out, g.Tasks...)
	}
	return out
}

// Folders maps each task's full position string to its folder on disk.
func (s *Sequence) Folders() map[string]string {
	out := make(map[string]string)
	for _, t := range s.Tasks() {
		out[t.Position.String()] = t.Folder
	}
	return out
}

// Build reconstructs the task sequence from the configured table and the
// scanned folder index.
//
// Fails with InvalidGroupKind for a parallel entry without slots, OrderGap
// when the orders are not exactly 1..N, MissingFolder when a configured task
// has no folder and DuplicatePosition when several folders claim it.
func Build(tasks manifest.Tasks, index Index) (*Sequence, error) {
	orders := tasks.Orders()
	groups := make([]*Group, 0, len(orders))

	for i, order := range orders {
		if order != i+1 {
			return nil, diag.New(diag.OrderGap, "task orders must run 1..%d without gaps; order %d is missing", len(orders), i+1).
				At(position.Serial(i + 1).String())
		}

		entry := tasks[order]
		g := &Group{Order: order}
		if entry.IsParallel() {
			if len(entry.Slots) == 0 {
				return nil, diag.New(diag.InvalidGroupKind, "parallel group %d has no slots", order).
					At(position.Serial(order).String())
			}
			for letter, name := range entry.Slots {
				g.Tasks = append(g.Tasks, Task{Position: position.Parallel(order, letter), Name: name})
			}
			slices.SortFunc(g.Tasks, func(a, b Task) int {
				c, _ := position.Compare(a.Position, b.Position)
				return c
			})
		} else {
			g.Tasks = append(g.Tasks, Task{Position: position.Serial(order), Name: entry.Name})
		}
		groups = append(groups, g)
	}

	for _, g := range groups {
		for i := range g.Tasks {
			t := &g.Tasks[i]
			found := index.Lookup(t.Position)
			switch len(found) {
			case 0:
				return nil, diag.NewMissingFolder(t.Position.String(), t.Name)
			case 1:
				t.Folder = found[0]
			default:
				return nil, diag.New(diag.DuplicatePosition, "folders %v all claim position %s", found, t.Position).
					At(t.Position.String()).Named(t.Name)
			}
		}
	}

	return &Sequence{groups: groups}, nil
}
