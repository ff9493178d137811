package core

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/lshan99q/epub-converter/pkg/types"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

// InputSpec is an immutable selection of files to convert
type InputSpec struct {
	Path string
	Kind types.InputKind
}

// NewFileInput selects a single file
func NewFileInput(path string) InputSpec {
	return InputSpec{Path: path, Kind: types.InputFile}
}

// NewDirectoryInput selects every e-book archive directly inside a directory
func NewDirectoryInput(path string) InputSpec {
	return InputSpec{Path: path, Kind: types.InputDirectory}
}

// DetectInput builds a spec from a path, choosing the kind from what the path is on fs
func DetectInput(fs afero.Fs, path string) (InputSpec, error) {
	isDir, err := afero.IsDir(fs, path)
	if err != nil {
		return InputSpec{}, utils.NewIOError(fmt.Sprintf("cannot access %s", path), err)
	}
	if isDir {
		return NewDirectoryInput(path), nil
	}
	return NewFileInput(path), nil
}

// ResolveInput expands the specs into an ordered list of file paths.
// It returns a no-input error when nothing matches.
func ResolveInput(fs afero.Fs, specs ...InputSpec) ([]string, error) {
	var paths []string

	for _, spec := range specs {
		switch spec.Kind {
		case types.InputFile:
			if spec.Path == "" {
				continue
			}
			paths = append(paths, spec.Path)

		case types.InputDirectory:
			found, err := listEpubFiles(fs, spec.Path)
			if err != nil {
				return nil, err
			}
			paths = append(paths, found...)

		default:
			return nil, utils.NewValidationError(fmt.Sprintf("unknown input kind: %q", spec.Kind), nil)
		}
	}

	if len(paths) == 0 {
		return nil, utils.NewNoInputError("no files found", nil)
	}

	return paths, nil
}

// listEpubFiles returns the regular files directly inside dir whose extension
// matches the e-book archive extension, in directory-listing order
func listEpubFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, utils.NewIOError(fmt.Sprintf("cannot list directory %s", dir), err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if utils.IsEpubFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}
