package workout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DiscoverPattern matches workout files anywhere below the search root.
const DiscoverPattern = "**/*.{json,yaml,yml}"

// Entry is one discovered workout file. Err is set when the file exists
// but does not hold a valid plan; Plan is nil in that case.
type Entry struct {
	Path string
	Plan *Plan
	Err  error
}

// Discover finds and loads every workout file under root. Invalid files
// are reported per entry rather than failing the whole scan.
func Discover(root string) ([]Entry, error) {
	matches, err := doublestar.Glob(os.DirFS(root), DiscoverPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(matches)

	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(root, filepath.FromSlash(m))
		plan, err := LoadFile(path)
		entries = append(entries, Entry{Path: path, Plan: plan, Err: err})
	}
	return entries, nil
}
