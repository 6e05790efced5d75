package openhrv

import (
	"path/filepath"
	"strconv"
	"strings"
)

// AllowedExtensions are the file extensions accepted for signal files.
var AllowedExtensions = []string{".bin", ".dat", ".csv"}

// HasAllowedExtension reports whether path ends in one of AllowedExtensions.
// The comparison ignores case, so "RECORD.CSV" is accepted.
func HasAllowedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// FormatOverlap renders an overlap fraction in its shortest decimal form (0.5, not 0.500000).
func FormatOverlap(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
