package workspace

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// RenameMode selects the rename primitive.
type RenameMode string

const (
	// RenameAuto uses git mv inside a git work tree and falls back to a plain
	// rename when git refuses (for example, an untracked folder).
	RenameAuto RenameMode = "auto"

	// RenameGit always uses git mv.
	RenameGit RenameMode = "git"

	// RenameFS always uses os.Rename.
	RenameFS RenameMode = "fs"
)

// ParseRenameMode validates a mode string from settings or flags.
func ParseRenameMode(s string) (RenameMode, error) {
	switch m := RenameMode(strings.ToLower(s)); m {
	case RenameAuto, RenameGit, RenameFS:
		return m, nil
	case "":
		return RenameAuto, nil
	default:
		return "", fmt.Errorf("invalid rename mode %q: must be one of auto, git, fs", s)
	}
}

type renamer struct {
	mode RenameMode

	once    sync.Once
	tracked bool
}

func newRenamer(mode RenameMode) *renamer {
	return &renamer{mode: mode}
}

func (r *renamer) rename(root, oldPath, newPath string) error {
	switch r.mode {
	case RenameFS:
		return fsRename(root, oldPath, newPath)
	case RenameGit:
		return gitMove(root, oldPath, newPath)
	default:
		r.once.Do(func() { r.tracked = insideWorkTree(root) })
		if r.tracked {
			if err := gitMove(root, oldPath, newPath); err == nil {
				return nil
			}
		}
		return fsRename(root, oldPath, newPath)
	}
}

func fsRename(root, oldPath, newPath string) error {
	return os.Rename(filepath.Join(root, oldPath), filepath.Join(root, newPath))
}

func gitMove(root, oldPath, newPath string) error {
	cmd := exec.Command("git", "mv", oldPath, newPath)
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git mv failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func insideWorkTree(root string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = root
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}
