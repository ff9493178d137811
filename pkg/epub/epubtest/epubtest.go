// Package epubtest builds small EPUB archives for tests.
package epubtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// Doc is one manifest item written into the fixture archive
type Doc struct {
	Href      string
	MediaType string
	Content   []byte
}

// XHTML returns a document item with the given body text
func XHTML(href, body string) Doc {
	content := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>%s</title></head><body><p>%s</p></body></html>`, href, body)
	return Doc{Href: href, MediaType: "application/xhtml+xml", Content: []byte(content)}
}

// Resource returns a non-document item
func Resource(href, mediaType string, content []byte) Doc {
	return Doc{Href: href, MediaType: mediaType, Content: content}
}

// Fixed timestamp so archives are reproducible
var modTime = time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)

// Bytes renders an archive with the documents placed under OEBPS/
func Bytes(t testing.TB, title string, docs ...Doc) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	add := func(name string, method uint16, data []byte) {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method, Modified: modTime})
		if err != nil {
			t.Fatalf("epubtest: create %s: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("epubtest: write %s: %v", name, err)
		}
	}

	add("mimetype", zip.Store, []byte("application/epub+zip"))
	add("META-INF/container.xml", zip.Deflate, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`))

	var manifest, spine strings.Builder
	for i, d := range docs {
		id := fmt.Sprintf("item%d", i+1)
		fmt.Fprintf(&manifest, "    <item id=%q href=%q media-type=%q/>\n", id, d.Href, d.MediaType)
		if d.MediaType == "application/xhtml+xml" {
			fmt.Fprintf(&spine, "    <itemref idref=%q/>\n", id)
		}
	}

	opf := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="uid">urn:uuid:epubtest</dc:identifier>
    <dc:title>%s</dc:title>
    <dc:language>zh</dc:language>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`, title, manifest.String(), spine.String())
	add("OEBPS/content.opf", zip.Deflate, []byte(opf))

	for _, d := range docs {
		add("OEBPS/"+d.Href, zip.Deflate, d.Content)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("epubtest: close: %v", err)
	}
	return buf.Bytes()
}

// Build writes a fixture archive to path on fs
func Build(t testing.TB, fs afero.Fs, path, title string, docs ...Doc) {
	t.Helper()
	if err := afero.WriteFile(fs, path, Bytes(t, title, docs...), 0644); err != nil {
		t.Fatalf("epubtest: write %s: %v", path, err)
	}
}

// ReadEntries returns the name and content of every entry of the archive at path
func ReadEntries(t testing.TB, fs afero.Fs, path string) ([]string, map[string][]byte) {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("epubtest: read %s: %v", path, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("epubtest: open %s: %v", path, err)
	}

	var names []string
	contents := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("epubtest: open entry %s: %v", f.Name, err)
		}
		var b bytes.Buffer
		if _, err := b.ReadFrom(rc); err != nil {
			t.Fatalf("epubtest: read entry %s: %v", f.Name, err)
		}
		rc.Close()
		names = append(names, f.Name)
		contents[f.Name] = b.Bytes()
	}
	return names, contents
}
