// Package scaffold generates the project skeleton and the boilerplate files
// of new task folders.
//
// Every creation is safe: an existing file or directory is only replaced
// after the workspace confirms the overwrite, and it is backed up first.
// Declining keeps what is there.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/roach88/mo/internal/manifest"
	"github.com/roach88/mo/internal/workspace"
)

//go:embed templates
var embedded embed.FS

// Template file names. A templates directory may override any of them.
const (
	TaskTemplate    = "task_template.py"
	WrapperTemplate = "wrapper_template.py"
	Requirements    = "requirements.txt"
	BuildScript     = "build.sh"
	ToxConfig       = "tox.ini"
)

// WrappersDir is the project directory that receives task wrappers.
const WrappersDir = "wrappers"

// Action kinds.
const (
	ActionCreate = "create"
	ActionWrite  = "write"
	ActionBackup = "backup"
	ActionKeep   = "keep"
	ActionSkip   = "skip"
)

// Action reports one thing a safe creation did.
type Action struct {
	Kind string

	// Path is relative to the workspace root.
	Path string

	// Detail holds the backup location for ActionBackup.
	Detail string
}

// Templates renders the boilerplate files.
type Templates struct {
	// dir overrides embedded templates file-by-file when non-empty.
	dir string
}

// New returns templates read from dir first, falling back to the embedded
// defaults. An empty dir uses only the embedded set.
func New(dir string) *Templates {
	return &Templates{dir: dir}
}

type taskData struct {
	TaskName   string
	TaskModule string
}

// Render executes the named template.
func (t *Templates) Render(name string, data any) ([]byte, error) {
	src, err := t.source(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (t *Templates) source(name string) ([]byte, error) {
	if t.dir != "" {
		data, err := os.ReadFile(filepath.Join(t.dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
	}
	data, err := embedded.ReadFile(path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return data, nil
}

// Task creates a task folder holding <name>.py and requirements.txt, plus a
// wrapper under wrappers/ when the project has that directory.
func (t *Templates) Task(ws workspace.Workspace, folder, name string) ([]Action, error) {
	data := taskData{TaskName: name, TaskModule: name}

	actions, err := SafeDir(ws, folder)
	if err != nil {
		return actions, err
	}

	body, err := t.Render(TaskTemplate, data)
	if err != nil {
		return actions, err
	}
	more, err := SafeFile(ws, filepath.Join(folder, name+".py"), body, 0o644)
	actions = append(actions, more...)
	if err != nil {
		return actions, err
	}

	more, err = SafeFile(ws, filepath.Join(folder, Requirements), []byte("-r ../requirements.txt"), 0o644)
	actions = append(actions, more...)
	if err != nil {
		return actions, err
	}

	if !ws.Exists(WrappersDir) {
		return actions, nil
	}
	body, err = t.Render(WrapperTemplate, data)
	if err != nil {
		return actions, err
	}
	more, err = SafeFile(ws, filepath.Join(WrappersDir, name+"_wrapper.py"), body, 0o644)
	return append(actions, more...), err
}

// ProjectDir is the directory name a model is initialised into.
func ProjectDir(model string) string {
	return strings.ReplaceAll(model, " ", "_")
}

// Init lays out a new project for model under the workspace root and
// returns the project directory name.
func (t *Templates) Init(ws workspace.Workspace, model string) (string, []Action, error) {
	dir := ProjectDir(model)
	var actions []Action

	run := func(more []Action, err error) error {
		actions = append(actions, more...)
		return err
	}

	for _, d := range []string{"", WrappersDir, "config", "tests", "utils"} {
		if err := run(SafeDir(ws, filepath.Join(dir, d))); err != nil {
			return dir, actions, err
		}
	}

	if err := run(SafeFile(ws, filepath.Join(dir, "config", ".env"), []byte("# environment variables go here\n"), 0o644)); err != nil {
		return dir, actions, err
	}

	files := []struct {
		tmpl string
		perm fs.FileMode
	}{
		{ToxConfig, 0o644},
		{Requirements, 0o644},
		{BuildScript, 0o755},
	}
	for _, f := range files {
		body, err := t.Render(f.tmpl, nil)
		if err != nil {
			return dir, actions, err
		}
		if err := run(SafeFile(ws, filepath.Join(dir, f.tmpl), body, f.perm)); err != nil {
			return dir, actions, err
		}
	}

	doc, err := manifest.New(model).Marshal()
	if err != nil {
		return dir, actions, err
	}
	if err := run(SafeFile(ws, filepath.Join(dir, manifest.DefaultFile), doc, 0o644)); err != nil {
		return dir, actions, err
	}
	return dir, actions, nil
}

// SafeDir creates a directory. An existing one is kept unless the overwrite
// is confirmed, in which case it is backed up, removed and re-created.
func SafeDir(ws workspace.Workspace, dir string) ([]Action, error) {
	var actions []Action
	if ws.Exists(dir) {
		if !ws.Confirm(fmt.Sprintf("Directory '%s' exists. Overwrite?", dir)) {
			return []Action{{Kind: ActionKeep, Path: dir}}, nil
		}
		loc, err := ws.Backup(dir)
		if err != nil {
			return nil, err
		}
		if loc != "" {
			actions = append(actions, Action{Kind: ActionBackup, Path: dir, Detail: loc})
		}
		if err := ws.RemoveAll(dir); err != nil {
			return actions, err
		}
	}
	if err := ws.CreateDir(dir); err != nil {
		return actions, err
	}
	return append(actions, Action{Kind: ActionCreate, Path: dir}), nil
}

// SafeFile writes a file. An existing one is kept unless the overwrite is
// confirmed, in which case it is backed up first.
func SafeFile(ws workspace.Workspace, file string, data []byte, perm fs.FileMode) ([]Action, error) {
	var actions []Action
	if ws.Exists(file) {
		if !ws.Confirm(fmt.Sprintf("File '%s' exists. Overwrite?", file)) {
			return []Action{{Kind: ActionSkip, Path: file}}, nil
		}
		loc, err := ws.Backup(file)
		if err != nil {
			return nil, err
		}
		if loc != "" {
			actions = append(actions, Action{Kind: ActionBackup, Path: file, Detail: loc})
		}
	}
	if err := ws.WriteFile(file, data, perm); err != nil {
		return actions, err
	}
	return append(actions, Action{Kind: ActionWrite, Path: file}), nil
}
