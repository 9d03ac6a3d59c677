package config

import (
	"os"
	"path/filepath"
)

const exampleConfig = `# pivot configuration
work_dir: ~/.cache/pivot
output_dir: ./translations

repositories:
  - name: sample
    url: https://github.com/acme/sample.git
    branch: main
    docs_path: docs
    # auth:
    #   type: token
    #   token: ${GITHUB_TOKEN}

translation:
  provider: openai
  model: gpt-4
  api_key_env: OPENAI_API_KEY
  timeout_seconds: 60

tracking:
  suffixes: [.md, .markdown, .yaml, .yml]

sync:
  max_retries: 2
  retry_backoff: linear
  retry_initial_delay: 1s
  retry_max_delay: 30s

watch:
  interval: 15m

monitoring:
  metrics:
    enabled: false
    address: ":9464"
    path: /metrics
  logging:
    level: info
    format: text

notify:
  # nats_url: nats://localhost:4222
  subject: pivot.plans

history:
  enabled: true
`

// Init writes an example configuration file to path. Existing files are kept unless force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return configError("configuration file already exists (use --force to overwrite): "+path, "", nil)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return configError("failed to create directory "+dir, "", err)
		}
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o600); err != nil {
		return configError("failed to write configuration file "+path, "", err)
	}
	return nil
}
