package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/mo/internal/journal"
	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/organizer"
	"github.com/roach88/mo/internal/scaffold"
)

// taskView is the JSON shape of one task.
type taskView struct {
	Position string `json:"position"`
	Name     string `json:"name"`
	Folder   string `json:"folder"`
}

// groupView is the JSON shape of one group with its neighbours.
type groupView struct {
	Order    int        `json:"order"`
	Prev     int        `json:"prev,omitempty"`
	Next     int        `json:"next,omitempty"`
	Parallel bool       `json:"parallel"`
	Tasks    []taskView `json:"tasks"`
}

// reportView is the JSON shape of a validation report.
type reportView struct {
	Valid  bool                  `json:"valid"`
	Model  string                `json:"model"`
	Groups []groupView           `json:"groups"`
	Drift  []organizer.DriftNote `json:"drift,omitempty"`
}

func newReportView(r *organizer.Report) reportView {
	v := reportView{Valid: true, Model: r.Model, Groups: []groupView{}, Drift: r.Drift}
	seq := r.Sequence
	for _, g := range seq.Groups() {
		gv := groupView{Order: g.Order, Parallel: g.IsParallel()}
		if p := seq.Prev(g); p != nil {
			gv.Prev = p.Order
		}
		if n := seq.Next(g); n != nil {
			gv.Next = n.Order
		}
		for _, t := range g.Tasks {
			gv.Tasks = append(gv.Tasks, taskView{Position: t.Position.String(), Name: t.Name, Folder: t.Folder})
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}

// resultView adds the resulting task table to a Result.
type resultView struct {
	*organizer.Result
	Tasks map[string]any `json:"tasks"`
}

func newResultView(r *organizer.Result) resultView {
	return resultView{Result: r, Tasks: tasksView(r.Tasks)}
}

// tasksView renders a task table the way Mo.yaml spells it.
func tasksView(tasks manifest.Tasks) map[string]any {
	out := make(map[string]any, len(tasks))
	for order, e := range tasks {
		key := strconv.Itoa(order)
		if e.IsParallel() {
			out[key] = e.Slots
		} else {
			out[key] = e.Name
		}
	}
	return out
}

func neighbour(order int) string {
	if order == 0 {
		return "none"
	}
	return strconv.Itoa(order)
}

func (f *OutputFormatter) writeReport(w io.Writer, r *organizer.Report) {
	st := f.style()
	v := newReportView(r)

	fmt.Fprintf(w, "%s Model: %s\n", st.ok.Render("✓ Validation successful."), v.Model)
	if len(v.Groups) == 0 {
		fmt.Fprintln(w, st.dim.Render("No tasks configured."))
	}
	for _, g := range v.Groups {
		fmt.Fprintf(w, "Group %d (prev: %s, next: %s):\n", g.Order, neighbour(g.Prev), neighbour(g.Next))
		for _, t := range g.Tasks {
			fmt.Fprintf(w, "  - %s: %s\n", t.Position, t.Name)
		}
	}
	if len(v.Drift) > 0 {
		fmt.Fprintln(w, st.warn.Render("Folder names differing from Mo.yaml:"))
		for _, d := range v.Drift {
			fmt.Fprintf(w, "  - %s: %s (expected %s, %s)\n", d.Position, d.Folder, d.Expected, d.Kind)
		}
	}
}

var opVerbs = map[string]string{
	"insert": "Added",
	"delete": "Deleted",
	"move":   "Moved",
}

func (f *OutputFormatter) writeResult(w io.Writer, r *organizer.Result, summary string) {
	st := f.style()

	if r.DryRun {
		fmt.Fprintf(w, "%s %s\n", st.warn.Render("Dry run:"), summary)
		for _, p := range r.Prompts {
			fmt.Fprintf(w, "  would ask: %s\n", p)
		}
	} else {
		verb := opVerbs[r.Op]
		fmt.Fprintf(w, "%s %s %s\n", st.ok.Render("✓ "+verb), summary, st.dim.Render("(op "+r.ID+")"))
	}

	for _, s := range r.Steps {
		line := fmt.Sprintf("  %s %s", st.kind.Render(fmt.Sprintf("%-8s", s.Kind)), s.Path)
		if s.To != "" {
			line += " → " + s.To
		}
		fmt.Fprintln(w, line)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n", st.warn.Render("warning:"), warning)
	}
}

func (f *OutputFormatter) writeActions(w io.Writer, actions []scaffold.Action) {
	st := f.style()
	for _, a := range actions {
		line := fmt.Sprintf("  %s %s", st.kind.Render(fmt.Sprintf("%-8s", a.Kind)), a.Path)
		if a.Detail != "" {
			line += " → " + a.Detail
		}
		fmt.Fprintln(w, line)
	}
}

func (f *OutputFormatter) writeHistory(w io.Writer, ops []journal.Operation) {
	st := f.style()
	if len(ops) == 0 {
		fmt.Fprintln(w, st.dim.Render("No operations recorded."))
		return
	}
	for _, op := range ops {
		status := st.ok.Render(op.Status)
		switch op.Status {
		case journal.StatusFailed:
			status = st.fail.Render(op.Status)
		case journal.StatusRunning:
			status = st.warn.Render("interrupted")
		}
		fmt.Fprintf(w, "%s  %s %s  %s  %s\n",
			op.StartedAt.UTC().Format(time.RFC3339), op.Kind, strings.Join(op.Args, " "), status, st.dim.Render(op.ID))
		if op.Error != "" {
			fmt.Fprintf(w, "    %s\n", op.Error)
		}
		for _, s := range op.Steps {
			line := fmt.Sprintf("    %d. %s %s", s.Seq, s.Kind, s.Path)
			if s.To != "" {
				line += " → " + s.To
			}
			fmt.Fprintln(w, line)
		}
	}
}
