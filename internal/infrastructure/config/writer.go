package config

import (
	"fmt"
	"os"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# lorestate configuration

sqlite:
  path: .lorestate/world.db

matching:
  threshold: 0.85
  # generic_terms: [thing, someone, it]  (replaces the built-in deny-list)

extraction:
  backend: lexicon   # lexicon | openai | none
  timeout: 2s

llm:
  model: gpt-4o-mini
  # api_key: your-api-key (or set OPENAI_API_KEY env var)
  # base_url: https://api.openai.com/v1

log:
  level: info
  development: false
`

// WriteDefault creates the .lorestate directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
