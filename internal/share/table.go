package share

import (
	"path/filepath"
	"strings"
)

// Only single disc images are served. Directories and multi-file formats
// won't work over plain range requests.
var supportedExts = []string{".iso", ".cso"}

// Supported reports whether a file name carries a servable disc-image
// extension. The check is case-insensitive.
func Supported(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range supportedExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// PathKey maps a local file path to the URL path it is served under:
// "/" + basename with spaces percent-encoded. Nothing else is escaped;
// the key must match the escaped path a range-aware client requests.
func PathKey(file string) string {
	return "/" + strings.ReplaceAll(filepath.Base(file), " ", "%20")
}

// BuildTable derives the serving path table from the configured file
// list. Unsupported extensions are skipped. The table is built once per
// server run and never mutated afterwards; a new run rebuilds it so
// config changes take effect.
func BuildTable(files []string) map[string]string {
	table := make(map[string]string)
	for _, file := range files {
		if Supported(file) {
			table[PathKey(file)] = file
		}
	}
	return table
}
