package utils

import (
	"fmt"
	"io"

	"github.com/h2non/filetype"
	"github.com/spf13/afero"

	"github.com/lshan99q/epub-converter/pkg/constants"
)

// Archive kinds accepted as EPUB containers
var archiveKinds = map[string]bool{
	"epub": true,
	"zip":  true,
}

// SniffArchive reads the file header and checks that it is a zip-based container.
// It returns the detected kind ("epub" or "zip").
func SniffArchive(fs afero.Fs, path string) (string, error) {
	head, err := readFileHeader(fs, path, constants.SniffHeaderSize)
	if err != nil {
		return "", WrapError(err, ErrorTypeIO, fmt.Sprintf("cannot read %s", path))
	}

	kind, err := filetype.Match(head)
	if err != nil {
		return "", NewFormatError(fmt.Sprintf("cannot detect file type of %s", path), err)
	}

	if kind == filetype.Unknown || !archiveKinds[kind.Extension] {
		detected := "unknown"
		if kind != filetype.Unknown {
			detected = kind.MIME.Value
		}
		return "", NewFormatError(fmt.Sprintf("%s is not an EPUB archive (detected: %s)", path, detected), nil)
	}

	return kind.Extension, nil
}

// readFileHeader reads up to size leading bytes of the file
func readFileHeader(fs afero.Fs, path string, size int) ([]byte, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	head := make([]byte, size)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	return head[:n], nil
}
