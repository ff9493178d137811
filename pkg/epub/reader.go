package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/net/html/charset"

	"github.com/lshan99q/epub-converter/pkg/constants"
)

// Store reads and writes archives on a filesystem
type Store struct {
	fs afero.Fs
}

// NewStore creates a store backed by fs
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Read opens the archive at filePath and loads every entry into memory.
// Structural problems are reported wrapping ErrInvalidEPub; filesystem problems
// are returned as-is.
func (s *Store) Read(filePath string) (*Book, error) {
	file, err := s.fs.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidEPub, filePath)
	}

	zr, err := zip.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEPub, err)
	}

	book := &Book{Path: filePath}
	for _, f := range zr.File {
		entry, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrInvalidEPub, f.Name, err)
		}
		book.entries = append(book.entries, entry)
	}

	if err := book.loadPackage(); err != nil {
		return nil, err
	}

	return book, nil
}

// readEntry decompresses a single zip entry
func readEntry(f *zip.File) (*Entry, error) {
	entry := &Entry{
		Name:     f.Name,
		Method:   f.Method,
		Modified: f.Modified,
		Comment:  f.Comment,
	}
	if f.FileInfo().IsDir() {
		return entry, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	entry.Data = data
	return entry, nil
}

// loadPackage locates the OPF through container.xml and builds the manifest items
func (b *Book) loadPackage() error {
	containerEntry, ok := b.Entry(constants.ContainerEntry)
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrInvalidEPub, constants.ContainerEntry)
	}

	var container containerXML
	if err := decodeXML(containerEntry.Data, &container); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrInvalidEPub, constants.ContainerEntry, err)
	}

	packagePath := ""
	for _, rf := range container.RootFiles {
		if rf.MediaType == "" || rf.MediaType == constants.PackageMimeType {
			packagePath = rf.FullPath
			break
		}
	}
	if packagePath == "" {
		return fmt.Errorf("%w: no package document declared in %s", ErrInvalidEPub, constants.ContainerEntry)
	}

	packageEntry, ok := b.Entry(packagePath)
	if !ok {
		return fmt.Errorf("%w: package document %s: %v", ErrInvalidEPub, packagePath, ErrFileNotFound)
	}

	var pkg packageXML
	if err := decodeXML(packageEntry.Data, &pkg); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrInvalidEPub, packagePath, err)
	}

	b.PackagePath = packagePath
	b.Version = pkg.Version
	if len(pkg.Metadata.Titles) > 0 {
		b.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}
	if len(pkg.Metadata.Languages) > 0 {
		b.Language = strings.TrimSpace(pkg.Metadata.Languages[0])
	}

	baseDir := path.Dir(packagePath)
	for _, m := range pkg.Manifest.Items {
		entry, ok := b.resolveHref(baseDir, m.Href)
		if !ok {
			return fmt.Errorf("%w: manifest item %q (%s): %v", ErrInvalidEPub, m.ID, m.Href, ErrFileNotFound)
		}
		b.items = append(b.items, &Item{
			ID:         m.ID,
			Href:       m.Href,
			MediaType:  m.MediaType,
			Properties: m.Properties,
			entry:      entry,
		})
	}

	for _, ref := range pkg.Spine.ItemRefs {
		b.spine = append(b.spine, ref.IDRef)
	}

	return nil
}

// resolveHref maps a manifest href, relative to the package document, to an archive entry
func (b *Book) resolveHref(baseDir, href string) (*Entry, bool) {
	candidates := []string{href}
	if unescaped, err := url.PathUnescape(href); err == nil && unescaped != href {
		candidates = append([]string{unescaped}, candidates...)
	}

	for _, c := range candidates {
		if entry, ok := b.Entry(path.Join(baseDir, c)); ok {
			return entry, true
		}
	}
	return nil, false
}

// decodeXML unmarshals an XML document that may declare a non-UTF-8 encoding
func decodeXML(data []byte, v interface{}) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder.Decode(v)
}
