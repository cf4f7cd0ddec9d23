package sequence

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"

	"github.com/roach88/mo/internal/position"
)

// folderPattern matches managed folder names: "3_prep" (serial) or
// "3a_train" (parallel). Group 1 is the order, group 2 the slot letters and
// group 3 the free-text name.
var folderPattern = regexp.MustCompile(`^(\d+)([a-z]*)_(.+)$`)

// Folder is a managed folder name split into its parts.
type Folder struct {
	// Name is the full folder name.
	Name string

	// Key is the full position string as written in the name ("3", "3a").
	Key string

	// Suffix is the free-text task name after the underscore.
	Suffix string
}

// ParseFolder splits a folder name. ok is false for names outside the managed
// namespace.
func ParseFolder(name string) (f Folder, ok bool) {
	m := folderPattern.FindStringSubmatch(name)
	if m == nil {
		return Folder{}, false
	}
	return Folder{Name: name, Key: m[1] + m[2], Suffix: m[3]}, true
}

// FolderName derives the backing folder name for a task.
func FolderName(pos position.Position, name string) string {
	return pos.String() + "_" + name
}

// Renumbered returns the folder name moved to pos, keeping the free-text
// suffix found on disk.
func Renumbered(folder string, pos position.Position) string {
	if f, ok := ParseFolder(folder); ok {
		return FolderName(pos, f.Suffix)
	}
	return FolderName(pos, folder)
}

// Index maps a full position string to the managed folders found for it.
// More than one folder per key is a conflict the reconciler reports.
type Index map[string][]string

// Lookup returns the folders indexed under pos.
func (ix Index) Lookup(pos position.Position) []string {
	return ix[pos.String()]
}

// Scan lists the immediate subdirectories of fsys and indexes those matching
// the managed naming scheme. Everything else is silently ignored.
func Scan(fsys fs.FS) (Index, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("scan folders: %w", err)
	}

	ix := Index{}
	for _, e := range entries {
		if !isDir(fsys, e) {
			continue
		}
		f, ok := ParseFolder(e.Name())
		if !ok {
			continue
		}
		ix[f.Key] = append(ix[f.Key], f.Name)
	}
	for _, names := range ix {
		sort.Strings(names)
	}
	return ix, nil
}

// isDir follows symlinks so linked task folders count as folders.
func isDir(fsys fs.FS, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := fs.Stat(fsys, e.Name())
	return err == nil && info.IsDir()
}
