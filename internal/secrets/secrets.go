// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. Only the key files this pipeline consumes are
// loaded; anything else in the directory is reported and skipped, so a typo in a key
// file name surfaces instead of silently configuring nothing.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names recognized by the config layer.
const (
	OpenAIAPIKey  = "openai-api-key"
	OpenAIBaseURL = "openai-base-url"
	GeminiAPIKey  = "gemini-api-key"
	SMTPPassword  = "smtp-password"
)

var knownKeys = map[string]bool{
	OpenAIAPIKey:  true,
	OpenAIBaseURL: true,
	GeminiAPIKey:  true,
	SMTPPassword:  true,
}

// Load reads the recognized key files in dir and returns a map of key name to
// trimmed contents. A missing directory or missing files are not errors; Load
// returns an empty map. Unrecognized or unreadable files produce a warning on
// stderr but do not abort. Secret values are never logged.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !knownKeys[name] {
			fmt.Fprintf(os.Stderr, "warning: ignoring unrecognized secret file %s\n", name)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
