// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file contains the hierarchical configuration loader. It first reads a
// base configuration file and then overwrites values with a second,
// environment-specific file (e.g., .env.local.toml, .env.test.toml). Environment
// variables are applied last.
//
// Functions:
//   - LoadConfig: Decodes the layered TOML files and environment overrides into a struct.
//   - Load: Builds, loads and validates the application Config.
package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
)

// Cloud Constants define key strings used for configuration loading.
const (
	ConfigFileBaseName  = ".env"                    // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"                   // The file extension for configuration files.
	ConfigSeparator     = "."                       // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "STREAILER_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "STREAILER_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
	DefaultRuntime      = "local"
)

// fileExists checks if a file exists at the given path on fs.
func fileExists(fs afero.Fs, in string) bool {
	ok, err := afero.Exists(fs, in)
	return err == nil && ok
}

// configFileNames returns the base and runtime configuration file names.
func configFileNames() (base string, runtime string) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}
	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = DefaultRuntime
	}
	base = prefix + ConfigFileBaseName + ConfigFileExtension
	runtime = prefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	return base, runtime
}

func decodeFile(fs afero.Fs, name string, baseConfig interface{}) error {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return err
	}
	if _, err = toml.Decode(string(data), baseConfig); err != nil {
		return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
	}
	return nil
}

// LoadConfig provides a hierarchical configuration loading mechanism. It loads
// the base file, merges the runtime specific file over it, then applies the
// environment variables declared with `env` tags. Missing files are skipped.
//
// Inputs:
//   - fs: The filesystem holding the configuration files.
//   - baseConfig: A pointer to the target configuration struct.
//
// Outputs:
//   - error: A decode error of either file or of the environment.
func LoadConfig(fs afero.Fs, baseConfig interface{}) error {
	baseConfigFileName, envConfigFileName := configFileNames()
	loaded := make([]string, 0, 2)
	for _, name := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(fs, name) {
			continue
		}
		if err := decodeFile(fs, name, baseConfig); err != nil {
			return err
		}
		loaded = append(loaded, name)
	}
	slog.Debug("configuration files loaded", "files", loaded)

	if err := env.Parse(baseConfig); err != nil {
		return fmt.Errorf("failed to read environment configuration: %w", err)
	}
	return nil
}

// Load builds the application configuration from defaults, files and the
// environment, and validates it.
func Load(fs afero.Fs) (*Config, error) {
	if fs == nil {
		return nil, errors.New("configuration filesystem is nil")
	}
	config := NewConfig()
	if err := LoadConfig(fs, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
