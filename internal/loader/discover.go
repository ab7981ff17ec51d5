package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DefaultSuffixes are the dump file suffixes picked up from directories.
var DefaultSuffixes = []string{".ast.yaml", ".ast.yml", ".ast.json"}

// DiscoverOptions configures Discover.
type DiscoverOptions struct {
	// Suffixes selects files inside directories. Defaults to DefaultSuffixes.
	Suffixes []string
	// Exclude holds patterns where * matches any sequence and ? one
	// character. A path is excluded when a pattern matches any part of it.
	Exclude []string
}

// Discover expands paths into a sorted list of dump files. Files named
// explicitly are kept regardless of suffix, unless excluded.
func Discover(paths []string, opts DiscoverOptions) ([]string, error) {
	suffixes := opts.Suffixes
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	exclude, err := CompileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] || exclude.Match(abs) {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != p && exclude.Match(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if hasSuffix(d.Name(), suffixes) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

func hasSuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Excludes is a compiled set of exclude patterns.
type Excludes []*regexp.Regexp

// CompileExcludes converts wildcard patterns into unanchored regular
// expressions matched against slash separated paths.
func CompileExcludes(patterns []string) (Excludes, error) {
	var out Excludes
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		expr := regexp.QuoteMeta(filepath.ToSlash(p))
		expr = strings.ReplaceAll(expr, `\*`, ".*")
		expr = strings.ReplaceAll(expr, `\?`, ".")
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Match reports whether any pattern matches path.
func (e Excludes) Match(path string) bool {
	path = filepath.ToSlash(path)
	for _, re := range e {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
