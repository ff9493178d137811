package interfaces

import (
	"github.com/lshan99q/epub-converter/pkg/epub"
	"github.com/lshan99q/epub-converter/pkg/types"
)

// Converter defines the interface for script conversion of text
type Converter interface {
	// Convert maps text to its converted form; unmapped characters pass through unchanged
	Convert(text string) (string, error)

	// Name returns the name of the converter
	Name() string
}

// ConverterFunc adapts a plain function to the Converter interface
type ConverterFunc func(text string) (string, error)

// Convert calls f(text)
func (f ConverterFunc) Convert(text string) (string, error) {
	return f(text)
}

// Name returns the name of the converter
func (f ConverterFunc) Name() string {
	return "func"
}

// ConverterFactory creates converters based on configuration
type ConverterFactory interface {
	// CreateConverter creates the converter for the configured direction and mode
	CreateConverter() (Converter, error)

	// RegisterMode registers a wrapper applied to the base converter for a mode
	RegisterMode(mode types.ConversionMode, wrap func(base Converter) Converter)

	// ListModes returns all registered modes
	ListModes() []string
}

// BookStore reads and writes e-book archives
type BookStore interface {
	// Read opens an archive and loads it into memory
	Read(path string) (*epub.Book, error)

	// Write serializes a book to path
	Write(path string, book *epub.Book) error
}

// ProgressFunc receives the current file's progress (0-100) and the overall batch progress (0-100)
type ProgressFunc func(fileProgress, batchProgress int)

// StatusFunc receives human-readable status text
type StatusFunc func(text string)

// BatchResult holds the result of a completed batch conversion
type BatchResult struct {
	FilesConverted int      `json:"files_converted"`
	ItemsConverted int      `json:"items_converted"`
	Outputs        []string `json:"outputs"`
	ProcessTime    int64    `json:"process_time_ms"`
}

// BatchProcessor handles the overall batch conversion workflow
type BatchProcessor interface {
	// ConvertBatch converts every path in order, stopping at the first failure
	ConvertBatch(paths []string, onProgress ProgressFunc, onStatus StatusFunc) (*BatchResult, error)

	// SetConverter replaces the script converter
	SetConverter(converter Converter)
}
