package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type backupConfig struct {
	disabled bool
	dir      string
}

// backupPath copies src (file or directory tree) into a fresh mo_backup_*
// directory under parent and returns that directory. The copy is complete
// before it returns. A symlinked src is backed up by copying what it points
// to, under src's own name.
func backupPath(src, parent string) (string, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", src, err)
	}
	from := src
	if info.Mode()&fs.ModeSymlink != 0 {
		if from, err = filepath.EvalSymlinks(src); err != nil {
			return "", fmt.Errorf("backup %s: %w", src, err)
		}
		if info, err = os.Stat(from); err != nil {
			return "", fmt.Errorf("backup %s: %w", src, err)
		}
	}

	dir, err := os.MkdirTemp(parent, "mo_backup_")
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", src, err)
	}
	dest := filepath.Join(dir, filepath.Base(src))

	if info.IsDir() {
		err = copyTree(from, dest)
	} else {
		err = copyFile(from, dest, info.Mode())
	}
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", src, err)
	}
	return dir, nil
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode())
		}
	})
}

func copyFile(src, dest string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
