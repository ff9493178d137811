package core

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/lshan99q/epub-converter/pkg/config"
	"github.com/lshan99q/epub-converter/pkg/constants"
	"github.com/lshan99q/epub-converter/pkg/epub"
	"github.com/lshan99q/epub-converter/pkg/interfaces"
	"github.com/lshan99q/epub-converter/pkg/logger"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

var _ interfaces.BatchProcessor = (*DefaultBatchProcessor)(nil)

// DefaultBatchProcessor implements BatchProcessor.
// Files are converted strictly in sequence and the first failure ends the batch.
type DefaultBatchProcessor struct {
	config      *config.Config
	logger      *logger.Logger
	fs          afero.Fs
	store       interfaces.BookStore
	converter   interfaces.Converter
	maxFileSize int64
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(cfg *config.Config, log *logger.Logger, fs afero.Fs, store interfaces.BookStore, converter interfaces.Converter) *DefaultBatchProcessor {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if log == nil {
		log = logger.Nop()
	}

	processor := &DefaultBatchProcessor{
		config:      cfg.Clone(),
		logger:      log,
		fs:          fs,
		store:       store,
		converter:   converter,
		maxFileSize: constants.MaxFileSize,
	}

	log.Debug("Batch processor initialized with configuration: %s", cfg)
	if converter != nil {
		log.Debug("  Converter: %s", converter.Name())
	}

	return processor
}

// SetConverter replaces the script converter
func (p *DefaultBatchProcessor) SetConverter(converter interfaces.Converter) {
	p.converter = converter
	p.logger.Debug("Converter updated: %s", converter.Name())
}

// ConvertInputs resolves the input specs and converts the resulting files
func (p *DefaultBatchProcessor) ConvertInputs(specs []InputSpec, onProgress interfaces.ProgressFunc, onStatus interfaces.StatusFunc) (*interfaces.BatchResult, error) {
	onProgress, onStatus = callbacksOrNoop(onProgress, onStatus)

	paths, err := ResolveInput(p.fs, specs...)
	if err != nil {
		// Nothing has been touched yet, so progress is left alone
		p.logger.Warn("Input resolution failed: %v", err)
		onStatus(constants.StatusErrorPrefix + err.Error())
		return nil, err
	}

	return p.ConvertBatch(paths, onProgress, onStatus)
}

// ConvertBatch converts every path in order, stopping at the first failure.
// Outputs written before a failure are left on disk.
func (p *DefaultBatchProcessor) ConvertBatch(paths []string, onProgress interfaces.ProgressFunc, onStatus interfaces.StatusFunc) (*interfaces.BatchResult, error) {
	onProgress, onStatus = callbacksOrNoop(onProgress, onStatus)
	startTime := time.Now()
	result := &interfaces.BatchResult{}

	if len(paths) == 0 {
		err := utils.NewNoInputError("no files found", nil)
		onStatus(constants.StatusErrorPrefix + err.Error())
		return result, err
	}
	if p.converter == nil {
		return p.fail(p.logger, result, utils.NewValidationError("no converter configured", nil), onProgress, onStatus)
	}

	log := p.logger.With("run", uuid.NewString())
	log.Info("=== Starting batch conversion ===")
	log.Info("Files: %d", len(paths))
	log.Info("Converter: %s", p.converter.Name())

	total := len(paths)
	for index, path := range paths {
		onStatus(fmt.Sprintf(constants.StatusProcessingFormat, index+1, total, filepath.Base(path)))

		output, items, err := p.convertFile(log, path, index, total, onProgress)
		if err != nil {
			return p.fail(log, result, err, onProgress, onStatus)
		}

		result.FilesConverted++
		result.ItemsConverted += items
		result.Outputs = append(result.Outputs, output)

		onProgress(constants.ProgressComplete, BatchProgress(index, 1, 1, total))
	}

	result.ProcessTime = time.Since(startTime).Milliseconds()
	log.Progress("✅", "Converted %d file(s) in %dms", result.FilesConverted, result.ProcessTime)
	log.Info("=== Batch conversion completed ===")

	onStatus(fmt.Sprintf(constants.StatusCompleteFormat, result.FilesConverted))
	return result, nil
}

// fail resets the visible progress and reports err through the status callback
func (p *DefaultBatchProcessor) fail(log *logger.Logger, result *interfaces.BatchResult, err error, onProgress interfaces.ProgressFunc, onStatus interfaces.StatusFunc) (*interfaces.BatchResult, error) {
	log.Error("Batch aborted after %d file(s): %v", result.FilesConverted, err)
	onProgress(0, 0)
	onStatus(constants.StatusErrorPrefix + err.Error())
	return result, err
}

// convertFile converts one archive and writes it next to the input.
// It returns the output path and the number of converted documents.
func (p *DefaultBatchProcessor) convertFile(log *logger.Logger, path string, index, total int, onProgress interfaces.ProgressFunc) (string, int, error) {
	output := p.config.OutputPathFor(path)

	log.Info("Input file: %s", path)
	log.Info("Output file: %s", output)

	if err := p.validateInputFile(log, path); err != nil {
		return "", 0, err
	}

	book, err := p.openBook(path)
	if err != nil {
		return "", 0, err
	}

	if !book.HasEpubMimetype() {
		log.Warn("%s does not declare %s, converting anyway", path, constants.EpubMimeType)
	}

	documents := book.Documents()
	log.Progress("📖", "Converting %s (%d documents)", describeBook(book), len(documents))

	if len(documents) == 0 {
		log.Debug("No markup documents in %s, archive is copied unchanged", path)
		onProgress(FileProgress(0, 0), BatchProgress(index, 0, 0, total))
	}

	for i, item := range documents {
		if err := p.convertItem(path, item); err != nil {
			return "", 0, err
		}
		log.Debug("Converted %s (%d bytes)", item.Name(), len(item.Content()))
		onProgress(FileProgress(i+1, len(documents)), BatchProgress(index, i+1, len(documents), total))
	}

	if err := p.store.Write(output, book); err != nil {
		return "", 0, utils.NewIOError(fmt.Sprintf("cannot write %s", output), err).
			WithContext("input", path).
			WithContext("output", output)
	}
	log.Progress("💾", "Saved to: %s", output)

	return output, len(documents), nil
}

// validateInputFile checks that the input exists, has a sane size and looks like a zip container
func (p *DefaultBatchProcessor) validateInputFile(log *logger.Logger, path string) error {
	info, err := p.fs.Stat(path)
	if err != nil {
		return utils.NewIOError(fmt.Sprintf("cannot read %s", path), err)
	}
	if info.IsDir() {
		return utils.NewFormatError(fmt.Sprintf("%s is a directory, not an EPUB archive", path), nil)
	}

	if info.Size() > p.maxFileSize {
		return utils.NewValidationError(
			fmt.Sprintf("%s: file size (%d bytes) exceeds maximum limit (%d bytes)",
				path, info.Size(), p.maxFileSize), nil)
	}
	if info.Size() > constants.WarnFileSizeLimit {
		log.Warn("Large file detected (%d bytes), processing may take longer", info.Size())
	}

	kind, err := utils.SniffArchive(p.fs, path)
	if err != nil {
		return err
	}
	log.Debug("Detected archive kind: %s", kind)

	return nil
}

// openBook reads the archive, classifying structural problems as format errors
func (p *DefaultBatchProcessor) openBook(path string) (*epub.Book, error) {
	book, err := p.store.Read(path)
	if err == nil {
		return book, nil
	}

	if errors.Is(err, epub.ErrInvalidEPub) {
		return nil, utils.NewFormatError(fmt.Sprintf("%s is not a valid EPUB archive", path), err)
	}
	return nil, utils.NewIOError(fmt.Sprintf("cannot read %s", path), err)
}

// convertItem decodes, converts and replaces the content of one document
func (p *DefaultBatchProcessor) convertItem(path string, item *epub.Item) error {
	content := item.Content()
	if err := utils.ValidateUTF8(content); err != nil {
		return utils.NewDecodingError(fmt.Sprintf("%s: document %s is not valid UTF-8", path, item.Name()), err).
			WithContext("input", path).
			WithContext("document", item.Name())
	}

	converted, err := p.converter.Convert(string(content))
	if err != nil {
		return utils.NewConversionError(fmt.Sprintf("%s: failed to convert document %s", path, item.Name()), err).
			WithContext("input", path).
			WithContext("document", item.Name())
	}

	item.SetContent([]byte(converted))
	return nil
}

// FileProgress returns the progress of the current file after done of total documents.
// Conversion covers the first 90%; the rest is reserved for writing the archive.
func FileProgress(done, total int) int {
	return int(math.Round(documentFraction(done, total) * 100 * constants.FileConvertShare))
}

// BatchProgress returns the overall progress while the file at index (of files)
// has converted done of total documents
func BatchProgress(index, done, total, files int) int {
	if files <= 0 {
		return 0
	}
	return int(math.Round(100 * (float64(index) + documentFraction(done, total)) / float64(files)))
}

// documentFraction treats a file without documents as fully converted
func documentFraction(done, total int) float64 {
	if total <= 0 {
		return 1
	}
	return float64(done) / float64(total)
}

// describeBook names a book for log lines
func describeBook(book *epub.Book) string {
	name := filepath.Base(book.Path)
	if book.Title != "" {
		return fmt.Sprintf("%s %q", name, book.Title)
	}
	return name
}

func callbacksOrNoop(onProgress interfaces.ProgressFunc, onStatus interfaces.StatusFunc) (interfaces.ProgressFunc, interfaces.StatusFunc) {
	if onProgress == nil {
		onProgress = func(int, int) {}
	}
	if onStatus == nil {
		onStatus = func(string) {}
	}
	return onProgress, onStatus
}
