package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// CopyDir recursively copies the contents of src into dst, creating dst if
// needed. Entries whose base name appears in skip are ignored at every
// depth. Symlinks are not followed; they are skipped. When dst lives inside
// src, it is excluded from the copy by resolved path, so a subdirectory
// that merely shares dst's base name is still staged.
//
// Builders use this to stage project sources into the artifact directory,
// skipping junk like .git.
func CopyDir(src, dst string, skip map[string]bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrap(err, "checking source directory")
	}
	if !info.IsDir() {
		return errors.Newf("source is not a directory: %s", src)
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return errors.Wrap(err, "resolving destination directory")
	}

	return copyTree(src, dst, absDst, skip)
}

func copyTree(src, dst, absDst string, skip map[string]bool) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return errors.Wrap(err, "creating destination directory")
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrap(err, "reading source directory")
	}

	for _, entry := range entries {
		if skip[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		if entry.IsDir() {
			if abs, err := filepath.Abs(srcPath); err == nil && abs == absDst {
				continue
			}
			if err := copyTree(srcPath, dstPath, absDst, skip); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "checking source file")
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, "creating destination file")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copying %s", src)
	}

	return errors.Wrap(out.Close(), "closing destination file")
}
