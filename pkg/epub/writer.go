package epub

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/lshan99q/epub-converter/pkg/constants"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

// Write serializes the book to filePath. The archive is written to a temporary
// sibling first, so a failed write never leaves a partial file at filePath.
func (s *Store) Write(filePath string, book *Book) error {
	return utils.WriteFileAtomic(s.fs, filePath, func(w io.Writer) error {
		return book.Serialize(w)
	})
}

// Serialize writes the book as a zip archive. The mimetype entry, when present,
// goes first and uncompressed; other entries keep their order, method and timestamps.
func (b *Book) Serialize(w io.Writer) error {
	zw := zip.NewWriter(w)

	if mt, ok := b.Entry(constants.MimetypeEntry); ok {
		if err := writeEntry(zw, mt, zip.Store); err != nil {
			return err
		}
	}

	for _, e := range b.entries {
		if e.Name == constants.MimetypeEntry {
			continue
		}
		if err := writeEntry(zw, e, e.Method); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, e *Entry, method uint16) error {
	if method != zip.Store {
		method = zip.Deflate
	}

	header := &zip.FileHeader{
		Name:     e.Name,
		Method:   method,
		Modified: e.Modified,
		Comment:  e.Comment,
	}
	if e.IsDir() {
		header.Method = zip.Store
	}

	fw, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", e.Name, err)
	}
	if e.IsDir() {
		return nil
	}
	if _, err := fw.Write(e.Data); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", e.Name, err)
	}
	return nil
}
