package utils

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lshan99q/epub-converter/pkg/constants"
)

// DeriveOutputPath returns the sibling output path for an input file:
// {input_dir}/{prefix}{input_base}, extension preserved
func DeriveOutputPath(inputPath, prefix string) string {
	if prefix == "" {
		prefix = constants.DefaultOutputPrefix
	}
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	return filepath.Join(dir, prefix+base)
}

// IsEpubFile reports whether the path carries the e-book archive extension, ignoring case
func IsEpubFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), constants.EpubExtension)
}

// NormalizePath standardizes file paths
func NormalizePath(path string) string {
	return filepath.Clean(path)
}

// GetAbsolutePath returns the absolute, cleaned path
func GetAbsolutePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return NormalizePath(absPath), nil
}

// ValidatePrefix checks that an output prefix is usable inside a single file name
func ValidatePrefix(prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("output prefix cannot be empty")
	}
	if strings.ContainsAny(prefix, `/\`) {
		return fmt.Errorf("output prefix cannot contain path separators")
	}
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", ":", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(prefix, char) {
				return fmt.Errorf("output prefix contains invalid character: %s", char)
			}
		}
	}
	return nil
}
