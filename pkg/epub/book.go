// Package epub reads EPUB archives into memory and writes them back.
//
// Only the package manifest is interpreted: it tells which archive entries are
// markup documents. Every other entry (metadata, styles, images, fonts) is
// carried through a read/write round trip byte for byte.
package epub

import (
	"errors"
	"strings"
	"time"

	"github.com/lshan99q/epub-converter/pkg/constants"
)

var (
	// ErrInvalidEPub reports that the input is not a readable EPUB container
	ErrInvalidEPub = errors.New("invalid epub")

	// ErrFileNotFound reports that a manifest item has no archive entry
	ErrFileNotFound = errors.New("file not found in archive")
)

// Entry is one file stored in the archive
type Entry struct {
	Name     string
	Method   uint16
	Modified time.Time
	Comment  string
	Data     []byte
}

// IsDir reports whether the entry is a directory record
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// Item is a manifest item backed by an archive entry
type Item struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
	entry      *Entry
}

// Name returns the archive path of the item
func (i *Item) Name() string {
	return i.entry.Name
}

// Content returns the item's raw bytes
func (i *Item) Content() []byte {
	return i.entry.Data
}

// SetContent replaces the item's bytes
func (i *Item) SetContent(data []byte) {
	i.entry.Data = data
}

// IsDocument reports whether the item is a markup document
func (i *Item) IsDocument() bool {
	mediaType := strings.ToLower(strings.TrimSpace(i.MediaType))
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}
	for _, documentType := range constants.DocumentMediaTypes {
		if mediaType == documentType {
			return true
		}
	}
	return false
}

// Book is an opened archive held in memory
type Book struct {
	Path        string
	PackagePath string
	Version     string
	Title       string
	Language    string

	entries []*Entry
	items   []*Item
	spine   []string
}

// Entries returns every archive entry in archive order
func (b *Book) Entries() []*Entry {
	return b.entries
}

// Entry looks up an archive entry by name
func (b *Book) Entry(name string) (*Entry, bool) {
	for _, e := range b.entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Items returns manifest items in manifest order
func (b *Book) Items() []*Item {
	return b.items
}

// Documents returns the markup document items in manifest order
func (b *Book) Documents() []*Item {
	var docs []*Item
	for _, item := range b.items {
		if item.IsDocument() {
			docs = append(docs, item)
		}
	}
	return docs
}

// Spine returns the reading order as manifest ids
func (b *Book) Spine() []string {
	return b.spine
}

// HasEpubMimetype reports whether the mimetype entry declares an EPUB container
func (b *Book) HasEpubMimetype() bool {
	mt, ok := b.Entry(constants.MimetypeEntry)
	return ok && strings.TrimSpace(string(mt.Data)) == constants.EpubMimeType
}
