package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/position"
	"github.com/roach88/mo/internal/sequence"
)

// Project is a project tree laid out in a temporary directory.
type Project struct {
	t    *testing.T
	Root string
}

// NewProject writes Mo.yaml for tasks and creates one folder per configured
// task, named from its position and name.
func NewProject(t *testing.T, model string, tasks manifest.Tasks) *Project {
	t.Helper()
	p := &Project{t: t, Root: t.TempDir()}

	m := manifest.New(model)
	m.Tasks = tasks
	require.NoError(t, m.Save(filepath.Join(p.Root, manifest.DefaultFile)))

	for _, order := range tasks.Orders() {
		e := tasks[order]
		if !e.IsParallel() {
			p.Mkdir(sequence.FolderName(position.Serial(order), e.Name))
			continue
		}
		for _, l := range e.Letters() {
			p.Mkdir(sequence.FolderName(position.Parallel(order, l), e.Slots[l]))
		}
	}
	return p
}

// Mkdir creates a directory under the root.
func (p *Project) Mkdir(name string) {
	p.t.Helper()
	require.NoError(p.t, os.MkdirAll(filepath.Join(p.Root, name), 0o755))
}

// WriteFile writes a file under the root, creating parents.
func (p *Project) WriteFile(name, content string) {
	p.t.Helper()
	path := filepath.Join(p.Root, name)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(p.t, os.WriteFile(path, []byte(content), 0o644))
}

// ReadFile returns the content of a file under the root.
func (p *Project) ReadFile(name string) string {
	p.t.Helper()
	data, err := os.ReadFile(filepath.Join(p.Root, name))
	require.NoError(p.t, err)
	return string(data)
}

// Dirs lists the directories directly under the root, sorted.
func (p *Project) Dirs() []string {
	p.t.Helper()
	entries, err := os.ReadDir(p.Root)
	require.NoError(p.t, err)
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// Tasks loads the task table from Mo.yaml.
func (p *Project) Tasks() manifest.Tasks {
	p.t.Helper()
	m, err := manifest.Load(filepath.Join(p.Root, manifest.DefaultFile))
	require.NoError(p.t, err)
	return m.Tasks
}
