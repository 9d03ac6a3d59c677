package config

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ValidateConfig checks a normalized, defaulted configuration.
func ValidateConfig(c *Config) error {
	v := &validator{c: c}
	return v.validate()
}

type validator struct{ c *Config }

func (v *validator) validate() error {
	steps := []func() error{
		v.validateDirectories,
		v.validateRepositories,
		v.validateTranslation,
		v.validateTracking,
		v.validateSync,
		v.validateWatch,
		v.validateNotify,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateDirectories() error {
	if v.c.WorkDir == "" {
		return configError("work_dir is required", "work_dir", nil)
	}
	if v.c.OutputDir == "" {
		return configError("output_dir is required", "output_dir", nil)
	}
	return nil
}

func (v *validator) validateRepositories() error {
	if len(v.c.Repositories) == 0 {
		return configError("at least one repository must be configured", "repositories", nil)
	}
	seen := make(map[string]struct{}, len(v.c.Repositories))
	for i, r := range v.c.Repositories {
		field := fmt.Sprintf("repositories[%d]", i)
		if r.Name == "" {
			return configError("repository name is required", field+".name", nil)
		}
		if strings.ContainsAny(r.Name, `/\`) || r.Name == "." || r.Name == ".." {
			return configError(fmt.Sprintf("repository name %q must not contain path separators", r.Name), field+".name", nil)
		}
		if _, dup := seen[r.Name]; dup {
			return configError(fmt.Sprintf("duplicate repository name %q", r.Name), field+".name", nil)
		}
		seen[r.Name] = struct{}{}
		if r.URL == "" {
			return configError(fmt.Sprintf("repository %s: url is required", r.Name), field+".url", nil)
		}
		if err := validateDocsPath(r, field); err != nil {
			return err
		}
		if err := validateAuth(r, field); err != nil {
			return err
		}
	}
	return nil
}

func validateDocsPath(r Repository, field string) error {
	root := r.DocsRoot()
	if path.IsAbs(root) {
		return configError(fmt.Sprintf("repository %s: docs_path must be relative", r.Name), field+".docs_path", nil)
	}
	if root == ".." || strings.HasPrefix(root, "../") {
		return configError(fmt.Sprintf("repository %s: docs_path must stay inside the repository", r.Name), field+".docs_path", nil)
	}
	return nil
}

func validateAuth(r Repository, field string) error {
	if r.Auth == nil {
		return nil
	}
	switch r.Auth.Type {
	case AuthTypeNone:
	case AuthTypeToken:
		if r.Auth.Token == "" {
			return configError(fmt.Sprintf("repository %s: token auth requires token", r.Name), field+".auth.token", nil)
		}
	case AuthTypeBasic:
		if r.Auth.Username == "" || r.Auth.Password == "" {
			return configError(fmt.Sprintf("repository %s: basic auth requires username and password", r.Name), field+".auth", nil)
		}
	case AuthTypeSSH:
		if r.Auth.KeyPath == "" {
			return configError(fmt.Sprintf("repository %s: ssh auth requires key_path", r.Name), field+".auth.key_path", nil)
		}
	default:
		return configError(fmt.Sprintf("repository %s: unsupported auth type %q", r.Name, r.Auth.Type), field+".auth.type", nil)
	}
	return nil
}

func (v *validator) validateTranslation() error {
	t := v.c.Translation
	if t == nil {
		return configError("translation section is required", "translation", nil)
	}
	if strings.TrimSpace(t.Provider) == "" {
		return configError("translation provider is required", "translation.provider", nil)
	}
	if strings.TrimSpace(t.Model) == "" {
		return configError("translation model is required", "translation.model", nil)
	}
	if t.APIKey == "" && t.APIKeyEnv == "" {
		return configError("either api_key or api_key_env must be provided", "translation.api_key", nil)
	}
	if t.BaseURL != "" {
		u, err := url.Parse(t.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return configError("translation base_url must be an http(s) URL", "translation.base_url", err)
		}
	}
	if t.TimeoutSeconds <= 0 {
		return configError("translation timeout_seconds must be greater than zero", "translation.timeout_seconds", nil)
	}
	return nil
}

func (v *validator) validateTracking() error {
	for _, s := range v.c.Tracking.Suffixes {
		if !strings.HasPrefix(s, ".") || len(s) < 2 {
			return configError(fmt.Sprintf("invalid tracked suffix %q", s), "tracking.suffixes", nil)
		}
	}
	return nil
}

func (v *validator) validateSync() error {
	s := v.c.Sync
	if s.MaxRetries < 0 {
		return configError("sync.max_retries must not be negative", "sync.max_retries", nil)
	}
	for field, raw := range map[string]string{
		"sync.retry_initial_delay": s.RetryInitialDelay,
		"sync.retry_max_delay":     s.RetryMaxDelay,
	} {
		if parseDuration(raw) <= 0 {
			return configError(fmt.Sprintf("%s must be a positive duration, got %q", field, raw), field, nil)
		}
	}
	if s.MaxDelay() < s.InitialDelay() {
		return configError("sync.retry_max_delay must not be shorter than sync.retry_initial_delay", "sync.retry_max_delay", nil)
	}
	return nil
}

func (v *validator) validateWatch() error {
	if v.c.Watch.IntervalDuration() <= 0 {
		return configError(fmt.Sprintf("watch.interval must be a positive duration, got %q", v.c.Watch.Interval), "watch.interval", nil)
	}
	return nil
}

func (v *validator) validateNotify() error {
	n := v.c.Notify
	if !n.Enabled() {
		return nil
	}
	u, err := url.Parse(n.NATSURL)
	if err != nil || u.Scheme == "" {
		return configError(fmt.Sprintf("notify.nats_url %q is not a valid URL", n.NATSURL), "notify.nats_url", err)
	}
	if strings.ContainsAny(n.Subject, " \t*>") {
		return configError(fmt.Sprintf("notify.subject %q must be a literal subject", n.Subject), "notify.subject", nil)
	}
	return nil
}
