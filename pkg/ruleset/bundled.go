package ruleset

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed rulesets/*.xml
var bundled embed.FS

// Bundled returns the rule-sets shipped with leapmd, laid out as
// rulesets/<id>.xml.
func Bundled() fs.FS {
	return bundled
}

// available lists the identifiers under rulesets/ in fsys.
func available(fsys fs.FS) []string {
	matches, err := fs.Glob(fsys, "rulesets/*.xml")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(path.Base(m), ".xml"))
	}
	sort.Strings(out)
	return out
}
