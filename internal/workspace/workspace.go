// Package workspace provides the filesystem, confirmation and backup
// collaborators the organizer drives.
//
// The organizer never touches the disk directly. Everything destructive goes
// through a Workspace so that confirmations, backups and version-controlled
// renames are applied uniformly, and so tests can run against a temporary
// directory with scripted answers.
//
// All paths handed to a Workspace are relative to its root.
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Workspace is the capability set the organizer core calls into.
type Workspace interface {
	// Root returns the absolute project root.
	Root() string

	// FS returns a read-only view of the root for scanning.
	FS() fs.FS

	// Confirm asks a yes/no question. The default answer is no.
	Confirm(prompt string) bool

	// Backup copies the file or directory tree at path into a fresh backup
	// location and returns that location. An empty location means backups
	// are disabled.
	Backup(path string) (string, error)

	// Exists reports whether path exists.
	Exists(path string) bool

	// CreateDir creates a directory and any missing parents.
	CreateDir(path string) error

	// RemoveAll deletes a directory tree.
	RemoveAll(path string) error

	// Rename renames through the version-control system where possible, so
	// history follows the folder. It fails without side effects when newPath
	// exists.
	Rename(oldPath, newPath string) error

	// Move relocates a path with a plain filesystem move.
	Move(oldPath, newPath string) error

	// WriteFile writes data atomically, creating parent directories, and
	// applies perm.
	WriteFile(path string, data []byte, perm fs.FileMode) error
}

// ErrDestinationExists is returned by Rename and Move when the target is
// already present.
var ErrDestinationExists = errors.New("destination already exists")

// Local is the Workspace backed by the real filesystem.
type Local struct {
	root     string
	prompter Prompter
	renamer  *renamer
	backups  backupConfig
}

// Option configures a Local workspace.
type Option func(*Local)

// WithPrompter sets the confirmation collaborator. Defaults to declining
// everything.
func WithPrompter(p Prompter) Option {
	return func(l *Local) { l.prompter = p }
}

// WithRenameMode selects how renames are performed: RenameGit, RenameFS or
// RenameAuto (the default).
func WithRenameMode(mode RenameMode) Option {
	return func(l *Local) { l.renamer = newRenamer(mode) }
}

// WithBackupDir sets the parent directory for backups. Empty means the system
// temporary directory.
func WithBackupDir(dir string) Option {
	return func(l *Local) { l.backups.dir = dir }
}

// WithoutBackups disables backups; Backup then returns an empty location.
func WithoutBackups() Option {
	return func(l *Local) { l.backups.disabled = true }
}

// NewLocal creates a workspace rooted at root.
func NewLocal(root string, opts ...Option) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	l := &Local{
		root:     abs,
		prompter: Decline{},
		renamer:  newRenamer(RenameAuto),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Root returns the absolute project root.
func (l *Local) Root() string {
	return l.root
}

// FS returns os.DirFS over the root.
func (l *Local) FS() fs.FS {
	return os.DirFS(l.root)
}

// Confirm delegates to the configured prompter.
func (l *Local) Confirm(prompt string) bool {
	return l.prompter.Confirm(prompt)
}

// Backup copies path into a new mo_backup_* directory.
func (l *Local) Backup(path string) (string, error) {
	if l.backups.disabled {
		return "", nil
	}
	return backupPath(l.abs(path), l.backups.dir)
}

// Exists reports whether path exists, without following a final symlink.
func (l *Local) Exists(path string) bool {
	_, err := os.Lstat(l.abs(path))
	return err == nil
}

// CreateDir creates path and any missing parents.
func (l *Local) CreateDir(path string) error {
	if err := os.MkdirAll(l.abs(path), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// RemoveAll deletes path and everything under it.
func (l *Local) RemoveAll(path string) error {
	if err := os.RemoveAll(l.abs(path)); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Rename renames oldPath to newPath using the configured rename mode.
func (l *Local) Rename(oldPath, newPath string) error {
	if l.Exists(newPath) {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, ErrDestinationExists)
	}
	if err := l.renamer.rename(l.root, oldPath, newPath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

// Move relocates oldPath to newPath on the filesystem.
func (l *Local) Move(oldPath, newPath string) error {
	if l.Exists(newPath) {
		return fmt.Errorf("move %s to %s: %w", oldPath, newPath, ErrDestinationExists)
	}
	if err := os.Rename(l.abs(oldPath), l.abs(newPath)); err != nil {
		return fmt.Errorf("move %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

// WriteFile writes data atomically. atomic.WriteFile does not apply modes to
// new files, so perm is set afterwards.
func (l *Local) WriteFile(path string, data []byte, perm fs.FileMode) error {
	target := l.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(target, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

func (l *Local) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, path)
}
