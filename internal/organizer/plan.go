package organizer

import (
	"fmt"

	"github.com/roach88/mo/internal/diag"
	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/position"
	"github.com/roach88/mo/internal/sequence"
)

// confirmation is a question the plan needs answered before it may run.
type confirmation struct {
	prompt   string
	code     diag.Code
	position string
	name     string
}

// plan is the target state of a mutation and the folder steps that reach it.
//
// tasks and folders are private copies. folders maps each configured full
// position to the folder that will hold it once the steps emitted so far
// have run.
type plan struct {
	tasks    manifest.Tasks
	folders  map[string]string
	steps    []Step
	confirms []confirmation
	warnings []string
}

func newPlan(tasks manifest.Tasks, folders map[string]string) *plan {
	cp := make(map[string]string, len(folders))
	for k, v := range folders {
		cp[k] = v
	}
	return &plan{tasks: tasks.Clone(), folders: cp}
}

func (p *plan) confirm(code diag.Code, pos position.Position, name, format string, args ...any) {
	p.confirms = append(p.confirms, confirmation{
		prompt:   fmt.Sprintf(format, args...),
		code:     code,
		position: pos.String(),
		name:     name,
	})
}

func (p *plan) warn(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *plan) emit(s Step) {
	p.steps = append(p.steps, s)
}

// rename moves the folder of the task at from so it is named for to, keeping
// the free-text part of the name found on disk.
func (p *plan) rename(from, to position.Position) {
	folder := p.folders[from.String()]
	target := sequence.Renumbered(folder, to)
	p.emit(Step{Kind: StepRename, Path: folder, To: target})
	delete(p.folders, from.String())
	p.folders[to.String()] = target
}

// positions lists the full positions hosted by the entry at order.
func positions(order int, e manifest.Entry) []position.Position {
	if !e.IsParallel() {
		return []position.Position{position.Serial(order)}
	}
	out := make([]position.Position, 0, len(e.Slots))
	for _, l := range e.Letters() {
		out = append(out, position.Parallel(order, l))
	}
	return out
}

// detached is a task taken out of the table by detach.
type detached struct {
	pos    position.Position
	name   string
	folder string
}

// detach removes the task at pos from the table and the folder map. The
// group it left is not yet settled.
func (p *plan) detach(pos position.Position) (detached, error) {
	entry, ok := p.tasks[pos.Order]
	if !ok {
		return detached{}, diag.New(diag.TaskNotFound, "no task group at order %d", pos.Order).At(pos.String())
	}

	d := detached{pos: pos, folder: p.folders[pos.String()]}
	switch {
	case !pos.IsParallel() && entry.IsParallel():
		return detached{}, diag.New(diag.InvalidGroupKind, "group %d is parallel; give the slot letter (e.g. %da)", pos.Order, pos.Order).
			At(pos.String())
	case pos.IsParallel() && !entry.IsParallel():
		return detached{}, diag.New(diag.InvalidGroupKind, "group %d is serial; it has no slot %s", pos.Order, pos.Slot).
			At(pos.String()).Named(entry.Name)
	case !pos.IsParallel():
		d.name = entry.Name
		delete(p.tasks, pos.Order)
	default:
		name, ok := entry.Slots[pos.Slot]
		if !ok {
			return detached{}, diag.New(diag.TaskNotFound, "no task at %s", pos).At(pos.String())
		}
		d.name = name
		delete(entry.Slots, pos.Slot)
	}
	delete(p.folders, pos.String())
	return d, nil
}

// settle restores the group invariants after detach: a removed serial group
// closes its gap, and a parallel group left with one slot is flattened.
func (p *plan) settle(d detached) error {
	if !d.pos.IsParallel() {
		p.shift(d.pos.Order+1, -1)
		return nil
	}

	entry := p.tasks[d.pos.Order]
	switch len(entry.Slots) {
	case 0:
		return diag.New(diag.InvalidGroupKind, "removing %s would leave parallel group %d without tasks", d.pos, d.pos.Order).
			At(d.pos.String()).Named(d.name)
	case 1:
		letter := entry.Letters()[0]
		from := position.Parallel(d.pos.Order, letter)
		to := position.Serial(d.pos.Order)
		remaining := entry.Slots[letter]
		folder := p.folders[from.String()]
		p.confirm(diag.ConversionDeclined, from, remaining, "Flatten group %d by renaming '%s' to '%s'?",
			d.pos.Order, folder, sequence.Renumbered(folder, to))
		p.rename(from, to)
		p.tasks[d.pos.Order] = manifest.SerialEntry(remaining)
	}
	return nil
}

// place puts a task named name at pos, shifting later groups or converting a
// serial occupant as needed. Bounds are checked against the current table.
func (p *plan) place(pos position.Position, name string) error {
	count := len(p.tasks)
	if pos.Order < 1 || pos.Order > count+1 {
		return diag.NewOutOfRange(pos.String(), pos.Order, count+1).Named(name)
	}

	entry, occupied := p.tasks[pos.Order]
	switch {
	case !pos.IsParallel():
		if occupied {
			p.shift(pos.Order, +1)
		}
		p.tasks[pos.Order] = manifest.SerialEntry(name)

	case !occupied:
		p.tasks[pos.Order] = manifest.ParallelEntry(map[string]string{pos.Slot: name})

	case entry.IsParallel():
		if existing, taken := entry.Slots[pos.Slot]; taken {
			return diag.New(diag.DuplicateSlot, "slot %s is already taken by %q", pos, existing).At(pos.String()).Named(name)
		}
		entry.Slots[pos.Slot] = name

	default:
		relabel := "b"
		if pos.Slot == "b" {
			relabel = "a"
		}
		from := position.Serial(pos.Order)
		to := position.Parallel(pos.Order, relabel)
		folder := p.folders[from.String()]
		p.confirm(diag.ConversionDeclined, from, entry.Name, "Convert serial task at %d to parallel (rename folder '%s' to '%s')?",
			pos.Order, folder, sequence.Renumbered(folder, to))
		p.rename(from, to)
		p.tasks[pos.Order] = manifest.ParallelEntry(map[string]string{relabel: entry.Name, pos.Slot: name})
	}
	return nil
}
