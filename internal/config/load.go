package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides config discovery.
const EnvConfigPath = "PIVOT_CONFIG"

// DefaultConfigFilenames are searched, in order, relative to the working directory.
var DefaultConfigFilenames = []string{
	"pivot.yaml",
	"pivot.yml",
	filepath.Join("config", "pivot.yaml"),
	filepath.Join("config", "pivot.yml"),
}

// Discover returns the configuration file to use. An explicit path must exist;
// otherwise PIVOT_CONFIG and the default filenames are tried in order.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		p := expandHome(explicit)
		if _, err := os.Stat(p); err != nil {
			return "", configError(fmt.Sprintf("configuration file %s does not exist", p), "", err)
		}
		return p, nil
	}

	var candidates []string
	if env := os.Getenv(EnvConfigPath); env != "" {
		candidates = append(candidates, env)
	}
	candidates = append(candidates, DefaultConfigFilenames...)
	for _, c := range candidates {
		p := expandHome(c)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", configError("no configuration file found; pass --config or set "+EnvConfigPath, "", nil)
}

// Load discovers, reads, normalizes, defaults and validates the configuration.
func Load(explicit string) (*Config, error) {
	loadEnvFiles()

	configPath, err := Discover(explicit)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, configError("failed to read config file "+configPath, "", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded", slog.String("path", configPath), slog.Int("repositories", len(cfg.Repositories)))
	return cfg, nil
}

// Parse decodes YAML content (after ${VAR} expansion) into a validated Config.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))
	if strings.TrimSpace(expanded) == "" {
		return nil, configError("configuration file is empty", "", nil)
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(expanded), &node); err != nil {
		return nil, configError("invalid YAML", "", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, configError("configuration top level must be a mapping", "", nil)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	if err := dec.Decode(&cfg); err != nil {
		return nil, configError("failed to decode configuration", "", err)
	}

	res := NormalizeConfig(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("config normalization", slog.String("warning", w))
	}
	applyDefaults(&cfg)
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads .env then .env.local without overriding existing variables.
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("failed to load env file", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("path", p))
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
