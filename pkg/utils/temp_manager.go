package utils

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/lshan99q/epub-converter/pkg/constants"
)

// WriteFileAtomic writes a file by streaming into a temporary sibling and renaming it
// over the destination. On any failure the temporary file is removed and the
// destination is left untouched.
func WriteFileAtomic(fs afero.Fs, path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	tmp, err := afero.TempFile(fs, dir, constants.TempFilePattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = fs.Chmod(tmpName, constants.DefaultFilePermission); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	if err = fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move temp file to %s: %w", path, err)
	}

	return nil
}
