package providers

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lshan99q/epub-converter/pkg/interfaces"
)

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// MarkupConverter converts only the character data of an HTML/XHTML document.
// Tags, attributes, comments, doctypes and the bodies of script and style
// elements are copied byte for byte. CDATA sections count as character data.
type MarkupConverter struct {
	name string
	base interfaces.Converter
}

// NewMarkupConverter wraps base so that it only sees text nodes
func NewMarkupConverter(base interfaces.Converter) interfaces.Converter {
	return &MarkupConverter{
		name: "markup+" + base.Name(),
		base: base,
	}
}

// Convert tokenizes the document and converts each text token in place
func (c *MarkupConverter) Convert(text string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(text))
	z.AllowCDATA(true)

	var out strings.Builder
	out.Grow(len(text))

	// Inside <script> or <style>
	inRawText := false

	for {
		tt := z.Next()
		raw := z.Raw()

		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				out.Write(raw)
				return out.String(), nil
			}
			return "", fmt.Errorf("failed to tokenize markup: %w", z.Err())

		case html.TextToken:
			if inRawText {
				out.Write(raw)
				continue
			}
			if err := c.convertText(&out, string(raw)); err != nil {
				return "", err
			}

		case html.StartTagToken:
			// Raw must be copied before TagName, which lowercases the buffer in place
			out.Write(raw)
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				inRawText = true
			case atom.Title, atom.Textarea:
				// Character data without child elements, converted as text
			default:
				// XHTML gives noscript, iframe, xmp and the like ordinary element content
				z.NextIsNotRawText()
			}

		case html.SelfClosingTagToken:
			// <script src="a.js"/> has no body in XHTML
			out.Write(raw)
			z.NextIsNotRawText()

		case html.EndTagToken:
			out.Write(raw)
			inRawText = false

		default:
			out.Write(raw)
		}
	}
}

// convertText converts a text token, keeping the delimiters of a CDATA section
func (c *MarkupConverter) convertText(out *strings.Builder, raw string) error {
	prefix, body, suffix := "", raw, ""
	if strings.HasPrefix(raw, cdataOpen) {
		prefix, body = cdataOpen, strings.TrimPrefix(raw, cdataOpen)
		if strings.HasSuffix(body, cdataClose) {
			body, suffix = strings.TrimSuffix(body, cdataClose), cdataClose
		}
	}

	converted, err := c.base.Convert(body)
	if err != nil {
		return err
	}
	out.WriteString(prefix)
	out.WriteString(converted)
	out.WriteString(suffix)
	return nil
}

// Name returns the name of the converter
func (c *MarkupConverter) Name() string {
	return c.name
}
