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

// Package cloud holds the deployment facing parts of the add-on: the
// configuration structure, the outbound HTTP client wrapper, the Google Cloud
// clients used for auditing, and the Pub/Sub listener.
//
// This file centralizes all configuration-related structs. Values come from
// TOML files first and environment variables second, and are validated once
// at startup.
//
// Structs:
//   - Addon: The manifest branding and identity.
//   - TMDB: The primary metadata provider settings.
//   - YouTube: The hosting search provider settings.
//   - Logging: Log level and rotating log file settings.
//   - Telemetry: The OpenTelemetry exporter selection.
//   - Audit: The optional BigQuery and Pub/Sub audit sinks.
//   - TopicSubscription: A Pub/Sub subscription feeding resolution requests.
//   - Config: The top-level struct that aggregates all other configuration structs.
package cloud

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/workflow"
)

// Telemetry exporters.
const (
	ExporterNone = "none"
	ExporterGCP  = "gcp"
	ExporterOTLP = "otlp"
)

// Addon is the identity and branding published in the manifest.
type Addon struct {
	ID                    string `toml:"id" env:"STREAILER_ADDON_ID" validate:"required"`
	Version               string `toml:"version" validate:"required"`
	Name                  string `toml:"name" validate:"required"`
	Description           string `toml:"description"`
	Logo                  string `toml:"logo" validate:"omitempty,url"`
	Background            string `toml:"background" validate:"omitempty,url"`
	Configurable          bool   `toml:"configurable"`
	ConfigurationRequired bool   `toml:"configuration_required"`
}

// TMDB configures the primary metadata provider. An empty APIKey disables
// every trailer lookup.
type TMDB struct {
	BaseURL           string  `toml:"base_url" env:"TMDB_BASE_URL" validate:"required,url"`
	APIKey            string  `toml:"api_key" env:"TMDB_API_KEY"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	Burst             int     `toml:"burst" validate:"min=1"`
}

// YouTube configures the hosting search provider. With an APIKey the Data API
// is used; otherwise the public results page is parsed.
type YouTube struct {
	BaseURL           string  `toml:"base_url" env:"YOUTUBE_BASE_URL" validate:"required,url"`
	APIBaseURL        string  `toml:"api_base_url" validate:"required,url"`
	APIKey            string  `toml:"api_key" env:"YOUTUBE_API_KEY"`
	Disabled          bool    `toml:"disabled" env:"YOUTUBE_DISABLED"`
	MaxResults        int     `toml:"max_results" validate:"min=1,max=50"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	Burst             int     `toml:"burst" validate:"min=1"`
}

// Logging configures the slog handler and its rotating file output.
type Logging struct {
	Level      string `toml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	File       string `toml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `toml:"max_backups" validate:"min=0"`
	MaxAgeDays int    `toml:"max_age_days" validate:"min=0"`
	Compress   bool   `toml:"compress"`
}

// Telemetry selects where traces and metrics are exported.
type Telemetry struct {
	Exporter       string        `toml:"exporter" env:"OTEL_EXPORTER" validate:"oneof=none gcp otlp"`
	OTLPEndpoint   string        `toml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure   bool          `toml:"otlp_insecure"`
	MetricInterval time.Duration `toml:"metric_interval" validate:"gte=0"`
}

// Audit configures the optional remote resolution sinks. Empty names disable
// the corresponding sink.
type Audit struct {
	BigQueryDataset string        `toml:"bigquery_dataset" env:"AUDIT_BIGQUERY_DATASET"`
	BigQueryTable   string        `toml:"bigquery_table" validate:"required_with=BigQueryDataset"`
	PubSubTopic     string        `toml:"pubsub_topic" env:"AUDIT_PUBSUB_TOPIC"`
	BatchSize       int           `toml:"batch_size" validate:"min=1"`
	FlushInterval   time.Duration `toml:"flush_interval" validate:"gt=0"`
}

// TopicSubscription represents a Pub/Sub subscription whose messages are
// resolution requests.
type TopicSubscription struct {
	Name string `toml:"name" validate:"required"` // The name of the Pub/Sub subscription.
}

// Config represents the overall configuration for the application. It acts as
// the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string        `toml:"name" validate:"required"`
		GoogleProjectId string        `toml:"google_project_id" env:"GOOGLE_CLOUD_PROJECT"`
		Host            string        `toml:"host" env:"HOST"`
		Port            int           `toml:"port" env:"PORT" validate:"min=1,max=65535"`
		DefaultLocale   string        `toml:"default_locale" env:"STREAILER_DEFAULT_LOCALE" validate:"required,supported_locale"`
		FallbackLocale  string        `toml:"fallback_locale" env:"STREAILER_FALLBACK_LOCALE" validate:"required,supported_locale"`
		ProviderTimeout time.Duration `toml:"provider_timeout" env:"STREAILER_PROVIDER_TIMEOUT" validate:"gt=0"`
	} `toml:"application"`
	Addon              Addon                        `toml:"addon"`
	TMDB               TMDB                         `toml:"tmdb"`
	YouTube            YouTube                      `toml:"youtube"`
	Logging            Logging                      `toml:"logging"`
	Telemetry          Telemetry                    `toml:"telemetry"`
	Audit              Audit                        `toml:"audit"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions" validate:"dive"`
}

// NewConfig creates a Config holding the built in defaults. Loaded files and
// environment variables override them field by field.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with defaults and initialized maps.
func NewConfig() *Config {
	config := &Config{
		Addon: Addon{
			ID:           "org.streailer.trailer",
			Version:      "1.0.0",
			Name:         "Streailer",
			Description:  "Trailers for movies and series in your language.",
			Configurable: true,
		},
		TMDB: TMDB{
			BaseURL:           "https://api.themoviedb.org/3",
			RequestsPerSecond: 20,
			Burst:             20,
		},
		YouTube: YouTube{
			BaseURL:           "https://www.youtube.com",
			APIBaseURL:        "https://youtube.googleapis.com/",
			MaxResults:        5,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Logging:   Logging{Level: "info", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 14},
		Telemetry: Telemetry{Exporter: ExporterNone, MetricInterval: time.Minute},
		Audit:     Audit{BatchSize: 50, FlushInterval: 10 * time.Second},

		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	config.Application.Name = "streailer"
	config.Application.Port = 7020
	config.Application.DefaultLocale = string(model.DefaultLocale)
	config.Application.FallbackLocale = string(model.DefaultFallbackLocale)
	config.Application.ProviderTimeout = 8 * time.Second
	return config
}

// newValidator returns a validator aware of the supported locale set.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("supported_locale", func(fl validator.FieldLevel) bool {
		in := fl.Field().String()
		return model.NormalizeLocale(in, "") == model.Locale(in)
	})
	return v
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ResolutionOptions maps the application section onto the resolver options.
func (c *Config) ResolutionOptions() workflow.Options {
	return workflow.Options{
		DefaultLocale:   model.Locale(c.Application.DefaultLocale),
		FallbackLocale:  model.Locale(c.Application.FallbackLocale),
		ProviderTimeout: c.Application.ProviderTimeout,
	}
}

// ListenAddress is the host:port the HTTP server binds.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Application.Host, c.Application.Port)
}
