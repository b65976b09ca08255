// Package utils holds small host-filesystem helpers used by import
// resolution. Grounded on funvibe-funxy/internal/utils/path_utils.go,
// trimmed to spec.md §4.1's two-candidate search order.
package utils

import (
	"os"
	"path/filepath"

	"github.com/maxc-lang/maxc/internal/config"
)

// ResolveImport implements spec.md §4.1: "resolve `import name;` by
// reading `./lib/<name>.mxc` then `./<name>.mxc`". baseDir anchors the
// relative search (the importing file's directory). Returns the resolved
// path, or an error if neither candidate exists ("Missing file is a fatal
// error").
func ResolveImport(baseDir, name string) (string, error) {
	candidates := []string{
		filepath.Join(baseDir, "lib", name+config.SourceFileExt),
		filepath.Join(baseDir, name+config.SourceFileExt),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", &os.PathError{
		Op:   "import",
		Path: name,
		Err:  os.ErrNotExist,
	}
}
