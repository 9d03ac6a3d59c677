package config

import (
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/pivot/internal/foundation/normalization"
)

var retryBackoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, RetryBackoffLinear)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and path fields in place before defaults apply.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}

	c.WorkDir = normalizeDir(c.WorkDir)
	c.OutputDir = normalizeDir(c.OutputDir)

	for i := range c.Repositories {
		r := &c.Repositories[i]
		r.Name = strings.TrimSpace(r.Name)
		r.URL = strings.TrimSpace(r.URL)
		r.Branch = strings.TrimSpace(r.Branch)
		if r.DocsPath != "" {
			r.DocsPath = r.DocsRoot()
		}
		if r.Auth != nil {
			if at := NormalizeAuthType(string(r.Auth.Type)); at != "" {
				r.Auth.Type = at
			}
		}
	}

	c.Tracking.Suffixes = normalizeSuffixes(c.Tracking.Suffixes, res)

	if raw := string(c.Sync.RetryBackoff); strings.TrimSpace(raw) != "" {
		rb, err := retryBackoffNormalizer.NormalizeWithError(raw)
		switch {
		case err != nil:
			res.Warnings = append(res.Warnings, warnUnknown("sync.retry_backoff", raw, string(RetryBackoffLinear)))
			c.Sync.RetryBackoff = RetryBackoffLinear
		case string(rb) != raw:
			res.Warnings = append(res.Warnings, warnChanged("sync.retry_backoff", raw, rb))
			c.Sync.RetryBackoff = rb
		}
	}
	if c.Sync.ShallowDepth < 0 {
		c.Sync.ShallowDepth = 0
	}

	logging := &c.Monitoring.Logging
	if raw := string(logging.Level); raw != "" {
		if lvl := NormalizeLogLevel(raw); string(lvl) != raw {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", raw, lvl))
			logging.Level = lvl
		}
	}
	if raw := string(logging.Format); raw != "" {
		if f := NormalizeLogFormat(raw); string(f) != raw {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", raw, f))
			logging.Format = f
		}
	}
	return res
}

// normalizeSuffixes trims, lower-cases, adds the leading dot and dedupes while keeping order.
func normalizeSuffixes(in []string, res *NormalizationResult) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) != len(in) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized tracking.suffixes list (%d -> %d entries)", len(in), len(out)))
	}
	return out
}

func normalizeDir(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	return expandHome(os.ExpandEnv(p))
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
