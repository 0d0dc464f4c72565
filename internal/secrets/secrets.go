// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. Keys missing from the directory are looked up
// in the process environment and then in a .env file.
//
// Supported keys: anthropic-api-key, google-cloud-project.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Key names, as file names under the secrets directory.
const (
	KeyAnthropicAPIKey    = "anthropic-api-key"
	KeyGoogleCloudProject = "google-cloud-project"
)

// envNames maps each key to the environment variable consulted when the
// secrets directory has no file for it.
var envNames = map[string]string{
	KeyAnthropicAPIKey:    "ANTHROPIC_API_KEY",
	KeyGoogleCloudProject: "GOOGLE_CLOUD_PROJECT",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
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
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns the secrets in dir, filling known keys that have no file
// from the environment, then from envFile. Precedence is secret file, then
// process environment, then .env. A missing envFile is not an error.
func Resolve(dir, envFile string) (map[string]string, error) {
	secrets, err := Load(dir)
	if err != nil {
		return nil, err
	}

	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}

	for key, env := range envNames {
		if _, ok := secrets[key]; ok {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			secrets[key] = v
			continue
		}
		if v := strings.TrimSpace(dotenv[env]); v != "" {
			secrets[key] = v
		}
	}
	return secrets, nil
}
