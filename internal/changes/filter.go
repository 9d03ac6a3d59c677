package changes

import (
	"path"
	"strings"
)

// Filter keeps the paths whose suffix is tracked and that lie under docsRoot.
// An empty root, "." or "./" means the whole repository. Containment is decided
// per path segment, so "docs" does not contain "docsy/x.md".
func Filter(paths []string, suffixes Suffixes, docsRoot string) []string {
	root := normalizeRoot(docsRoot)
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel := normalizePath(p)
		if rel == "" || !suffixes.Match(rel) {
			continue
		}
		if root != "" && rel != root && !strings.HasPrefix(rel, root+"/") {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// Dedupe removes repeated paths, keeping first occurrences in order.
func Dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func normalizeRoot(root string) string {
	r := strings.TrimSpace(strings.ReplaceAll(root, "\\", "/"))
	if r == "" {
		return ""
	}
	r = path.Clean(r)
	if r == "." || r == "/" {
		return ""
	}
	return strings.TrimPrefix(r, "./")
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(p), "./")
}
