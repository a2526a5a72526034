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

package cloud_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	test "github.com/jaycherian/gcp-go-streailer/internal/testutil"
)

func configFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	t.Setenv(cloud.EnvConfigFilePrefix, "configs")
	t.Setenv(cloud.EnvConfigRuntime, "test")
	fs := afero.NewMemMapFs()
	for name, content := range files {
		assert.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	config, err := cloud.Load(configFs(t, nil))

	assert.NoError(t, err)
	assert.Equal(t, config.Application.Port, 7020)
	assert.Equal(t, config.Application.DefaultLocale, "it-IT")
	assert.Equal(t, config.Application.FallbackLocale, "en-US")
	assert.Equal(t, config.Application.ProviderTimeout, 8*time.Second)
	assert.Equal(t, config.Addon.ID, "org.streailer.trailer")
	assert.Equal(t, config.TMDB.APIKey, "")
	assert.Equal(t, config.Telemetry.Exporter, cloud.ExporterNone)
}

func TestLoadLayeredFiles(t *testing.T) {
	fs := configFs(t, map[string]string{
		"configs/.env.toml": test.TestConfigTOML,
		"configs/.env.test.toml": `
[application]
port = 8080
default_locale = "fr-FR"

[topic_subscriptions.requests]
name = "resolution-requests-sub"
`,
	})

	config, err := cloud.Load(fs)

	assert.NoError(t, err)
	assert.Equal(t, config.Application.Name, "streailer-test")
	assert.Equal(t, config.Application.Port, 8080)
	assert.Equal(t, config.Application.DefaultLocale, "fr-FR")
	assert.Equal(t, config.Application.ProviderTimeout, 2*time.Second)
	assert.Equal(t, config.TMDB.APIKey, "test-key")
	assert.Equal(t, config.Audit.FlushInterval, time.Second)
	assert.Equal(t, config.TopicSubscriptions["requests"].Name, "resolution-requests-sub")
	assert.Equal(t, config.ListenAddress(), "127.0.0.1:8080")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	fs := configFs(t, map[string]string{"configs/.env.toml": test.TestConfigTOML})
	t.Setenv("TMDB_API_KEY", "from-env")
	t.Setenv("PORT", "9000")
	t.Setenv("STREAILER_DEFAULT_LOCALE", "ja-JP")
	t.Setenv("LOG_LEVEL", "warn")

	config, err := cloud.Load(fs)

	assert.NoError(t, err)
	assert.Equal(t, config.TMDB.APIKey, "from-env")
	assert.Equal(t, config.Application.Port, 9000)
	assert.Equal(t, config.Application.DefaultLocale, "ja-JP")
	assert.Equal(t, config.Logging.Level, "warn")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"unsupported default locale": "[application]\ndefault_locale = \"en-GB\"\n",
		"non canonical locale":       "[application]\nfallback_locale = \"en_us\"\n",
		"port out of range":          "[application]\nport = 70000\n",
		"unknown exporter":           "[telemetry]\nexporter = \"jaeger\"\n",
		"unknown log level":          "[logging]\nlevel = \"trace\"\n",
		"table missing":              "[audit]\nbigquery_dataset = \"streailer\"\n",
		"malformed toml":             "[application\nport = 1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := cloud.Load(configFs(t, map[string]string{"configs/.env.test.toml": content}))
			assert.Error(t, err)
		})
	}
}

func TestResolutionOptions(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.DefaultLocale = "de-DE"

	options := config.ResolutionOptions()

	assert.Equal(t, options.DefaultLocale, model.Locale("de-DE"))
	assert.Equal(t, options.FallbackLocale, model.DefaultFallbackLocale)
	assert.Equal(t, options.ProviderTimeout, 8*time.Second)
}

func TestTestConfigIsValid(t *testing.T) {
	config := test.GetConfig()

	assert.NotNil(t, config)
	assert.NoError(t, config.Validate())
}

func TestShippedBaseConfigKeepsAddonPort(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, "configs")
	t.Setenv(cloud.EnvConfigRuntime, "test")
	fs := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), "../.."))
	exists, err := afero.Exists(fs, "configs/.env.toml")
	assert.NoError(t, err)
	assert.True(t, exists)

	config, err := cloud.Load(fs)

	assert.NoError(t, err)
	assert.Equal(t, config.Application.Port, 7020)
	assert.Equal(t, cloud.NewConfig().Application.Port, 7020)
}
