package constants

// Application constants
const (
	// AppName names the binary and its settings directory; the version comes from ldflags in main.go
	AppName = "epub-converter"
)

// Output naming
const (
	// DefaultOutputPrefix is prepended to the input base name to form the output name
	DefaultOutputPrefix = "简体化_"

	// EpubExtension is the recognized e-book archive extension (matched case-insensitively)
	EpubExtension = ".epub"
)

// File processing constants
const (
	// Default file permissions
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// Temp file pattern used for atomic output writes
	TempFilePattern = ".epub-converter-*.tmp"

	// Number of leading bytes read when sniffing archive type
	SniffHeaderSize = 262
)

// Status texts emitted through the status callback
const (
	StatusProcessingFormat = "Processing %d/%d: %s"
	StatusCompletePrefix   = "Conversion complete"
	StatusCompleteFormat   = StatusCompletePrefix + ": %d file(s) converted"
	StatusErrorPrefix      = "Error: "
)

// Progress shares
const (
	// FileConvertShare is the share of a file's progress covered by document conversion;
	// the remainder is reserved for archive serialization
	FileConvertShare = 0.9

	// ProgressComplete is the value reported once a file or batch is done
	ProgressComplete = 100
)

// File size limits (in bytes)
const (
	MaxFileSize       = 500 * 1024 * 1024 // 500MB
	WarnFileSizeLimit = 50 * 1024 * 1024  // 50MB
)

// Archive layout
const (
	MimetypeEntry   = "mimetype"
	ContainerEntry  = "META-INF/container.xml"
	EpubMimeType    = "application/epub+zip"
	PackageMimeType = "application/oebps-package+xml"
)

// DocumentMediaTypes are the manifest media types treated as convertible markup documents
var DocumentMediaTypes = []string{
	"application/xhtml+xml",
	"text/html",
}
