package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lshan99q/epub-converter/pkg/config"
	"github.com/lshan99q/epub-converter/pkg/core"
	"github.com/lshan99q/epub-converter/pkg/epub"
	"github.com/lshan99q/epub-converter/pkg/interfaces"
	"github.com/lshan99q/epub-converter/pkg/logger"
	"github.com/lshan99q/epub-converter/pkg/report"
	"github.com/lshan99q/epub-converter/pkg/types"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

var (
	inputDirs    []string
	direction    string
	mode         string
	outputPrefix string
	logLevel     string
	logFile      string
	verbose      bool
	noProgress   bool
	showVersion  bool
)

// AppHandler encapsulates application main processing logic
type AppHandler struct {
	config    *config.Config
	logger    *logger.Logger
	fs        afero.Fs
	processor *core.DefaultBatchProcessor
	reporter  *report.Reporter
}

// NewAppHandler creates an application handler
func NewAppHandler() *AppHandler {
	return &AppHandler{fs: afero.NewOsFs()}
}

// ConvertPaths is the main entry point for batch conversion
func (h *AppHandler) ConvertPaths(paths, dirs []string) error {
	// Initialize configuration and components
	if err := h.initialize(); err != nil {
		return err
	}

	specs, err := h.buildInputSpecs(paths, dirs)
	if err != nil {
		return err
	}

	result, err := h.processor.ConvertInputs(specs, h.reporter.OnProgress, h.reporter.OnStatus)
	h.reporter.Finish()
	if err != nil {
		if result != nil && result.FilesConverted > 0 {
			h.reporter.Hint(fmt.Sprintf("%d book(s) converted before the failure were kept", result.FilesConverted))
		}
		return err
	}

	// Display results
	h.displayResults(result)
	return nil
}

// initialize initializes application components
func (h *AppHandler) initialize() error {
	cfg, err := config.LoadConfigWithEnvOverrides()
	if err != nil {
		return err
	}
	h.config = cfg
	h.applyCommandLineOverrides()

	// Validate configuration
	if err := h.config.Validate(); err != nil {
		return err
	}

	h.logger, err = logger.NewFileLogger(h.config.LogLevel, h.config.EnableVerbose, h.config.LogFile)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to open log file")
	}

	converter, err := core.NewConverterFactory(h.config, h.logger).CreateConverter()
	if err != nil {
		return err
	}

	h.processor = core.NewBatchProcessor(h.config, h.logger, h.fs, epub.NewStore(h.fs), converter)
	h.reporter = report.NewReporter(os.Stdout, h.config.ShowProgress)

	return nil
}

// applyCommandLineOverrides applies command line parameter overrides
func (h *AppHandler) applyCommandLineOverrides() {
	if direction != "" {
		h.config.Direction = types.Direction(strings.ToLower(direction))
	}
	if mode != "" {
		h.config.Mode = types.ConversionMode(strings.ToLower(mode))
	}
	if outputPrefix != "" {
		h.config.OutputPrefix = outputPrefix
	}
	if logLevel != "" {
		h.config.LogLevel = logLevel
	}
	if logFile != "" {
		h.config.LogFile = logFile
	}

	// Apply verbose parameter override
	if verbose {
		h.config.EnableVerbose = true
	}
	if noProgress {
		h.config.ShowProgress = false
	}
}

// buildInputSpecs turns arguments into input specs, in argument order.
// Positional paths may be files or directories; --dir values are always directories.
func (h *AppHandler) buildInputSpecs(paths, dirs []string) ([]core.InputSpec, error) {
	var specs []core.InputSpec

	for _, p := range paths {
		absPath, err := utils.GetAbsolutePath(p)
		if err != nil {
			return nil, utils.WrapError(err, utils.ErrorTypeValidation, "error resolving file path")
		}
		spec, err := core.DetectInput(h.fs, absPath)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	for _, d := range dirs {
		absPath, err := utils.GetAbsolutePath(d)
		if err != nil {
			return nil, utils.WrapError(err, utils.ErrorTypeValidation, "error resolving directory path")
		}
		specs = append(specs, core.NewDirectoryInput(absPath))
	}

	h.logger.Debug("Resolved %d input selection(s)", len(specs))
	return specs, nil
}

// displayResults displays processing results
func (h *AppHandler) displayResults(result *interfaces.BatchResult) {
	for _, output := range result.Outputs {
		fmt.Printf("📚 %s\n", output)
	}
	fmt.Printf("📊 Documents converted: %d\n", result.ItemsConverted)
	fmt.Printf("⏱️  Processing time: %dms\n", result.ProcessTime)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "epub-converter [file_or_directory...]",
	Short: "Convert EPUB e-books between Traditional and Simplified Chinese",
	Long: `Convert the text of EPUB e-books between Traditional and Simplified Chinese script.

Each converted book is written next to its input with a prefixed name, e.g.
  /books/三國演義.epub  ->  /books/简体化_三國演義.epub
Existing output files are overwritten. Files are converted one at a time and the
first failure stops the batch; books converted before the failure are kept.

Directions (OpenCC profiles):
- t2s (default), tw2s, tw2sp, hk2s: Traditional to Simplified
- s2t, s2tw, s2twp, s2hk: Simplified to Traditional

Modes:
- full (default): convert the whole text of every markup document
- markup: convert character data only, leaving tags and attributes untouched

Examples:
  epub-converter book.epub                      # Convert a single book
  epub-converter a.epub b.epub                  # Convert several books in order
  epub-converter -d ./library                   # Convert every .epub directly inside ./library
  epub-converter book.epub -t tw2sp             # Use Taiwan phrasing profile
  epub-converter book.epub -m markup            # Leave tags and attributes untouched
  epub-converter book.epub --prefix sc_         # Write sc_book.epub instead
  epub-converter -d ./library -v --no-progress  # Verbose log lines without a progress bar`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		// Handle version flag
		if showVersion {
			fmt.Println(CurrentBuild().Short())
			return
		}

		if len(args) == 0 && len(inputDirs) == 0 {
			cmd.Help()
			return
		}

		handler := NewAppHandler()
		if err := handler.ConvertPaths(args, inputDirs); err != nil {
			// Pipeline failures were already reported on the status line
			if handler.reporter != nil && handler.reporter.Failed() {
				os.Exit(1)
			}
			if appErr, ok := err.(*utils.AppError); ok {
				log.Fatalf("Error (%s): %s", appErr.Type, appErr.Message)
			} else {
				log.Fatalf("Error: %v", err)
			}
		}
	},
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Add flags to root command
	rootCmd.Flags().StringSliceVarP(&inputDirs, "dir", "d", nil,
		"Directory whose .epub files are converted (repeatable, not recursive)")
	rootCmd.Flags().StringVarP(&direction, "direction", "t", "",
		"Conversion profile (t2s, tw2s, tw2sp, hk2s, s2t, s2tw, s2twp, s2hk). Default: t2s")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "",
		"Conversion mode (full, markup). Default: full")
	rootCmd.Flags().StringVar(&outputPrefix, "prefix", "",
		"Output file name prefix (default: 简体化_)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "",
		"Also append log lines to this file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output to show progress information")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"Do not draw the progress bar")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false,
		"Show version information")
}
