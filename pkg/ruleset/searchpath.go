package ruleset

import (
	"os"
	"path/filepath"
)

// SearchPath is an ordered list of directories consulted when resolving
// rule-set identifiers and rule class files. It is owned by one Factory
// and grows as rule-sets declare php-includepath entries.
type SearchPath struct {
	dirs []string
}

// NewSearchPath creates a search path with the given directories.
func NewSearchPath(dirs ...string) *SearchPath {
	p := &SearchPath{}
	for _, d := range dirs {
		p.Append(d)
	}
	return p
}

// Append adds dir at the end unless already present.
func (p *SearchPath) Append(dir string) {
	if dir == "" {
		return
	}
	dir = filepath.Clean(dir)
	for _, d := range p.dirs {
		if d == dir {
			return
		}
	}
	p.dirs = append(p.dirs, dir)
}

// Dirs returns a copy of the directories in order.
func (p *SearchPath) Dirs() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.dirs...)
}

// Find returns the first dir/name that is a regular file.
func (p *SearchPath) Find(name string) (string, bool) {
	for _, d := range p.Dirs() {
		candidate := filepath.Join(d, name)
		if isRegularFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
