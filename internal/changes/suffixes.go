package changes

import (
	"path"
	"sort"

	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/pivot/internal/config"
)

// DefaultSuffixes are tracked when nothing else is configured.
var DefaultSuffixes = NewSuffixes(config.DefaultTrackedSuffixes...)

// Suffixes is a case-insensitive set of file extensions, each including the leading dot.
type Suffixes struct {
	set map[string]struct{}
}

var folder = cases.Fold()

// NewSuffixes builds a set; entries are case folded and empty entries ignored.
func NewSuffixes(values ...string) Suffixes {
	s := Suffixes{set: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if v == "" {
			continue
		}
		s.set[folder.String(v)] = struct{}{}
	}
	return s
}

// Match reports whether the final extension of p is in the set. A dotfile
// without a stem, such as "docs/.md", has no extension.
func (s Suffixes) Match(p string) bool {
	ext := path.Ext(p)
	if ext == "" || ext == path.Base(p) {
		return false
	}
	_, ok := s.set[folder.String(ext)]
	return ok
}

// Len returns the number of distinct suffixes.
func (s Suffixes) Len() int { return len(s.set) }

// Values returns the folded suffixes in sorted order.
func (s Suffixes) Values() []string {
	out := make([]string, 0, len(s.set))
	for v := range s.set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
