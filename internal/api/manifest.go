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

// Package api contains the HTTP surface of the add-on: the manifest, the
// stream resource the host application calls, and the operator endpoints.
package api

import (
	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// ConfigKeyLanguage is the only user configurable setting of the add-on.
const ConfigKeyLanguage = "language"

// Manifest is the add-on descriptor served on /manifest.json.
type Manifest struct {
	ID            string           `json:"id"`
	Version       string           `json:"version"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Logo          string           `json:"logo,omitempty"`
	Background    string           `json:"background,omitempty"`
	Resources     []string         `json:"resources"`
	Types         []string         `json:"types"`
	IDPrefixes    []string         `json:"idPrefixes"`
	Catalogs      []any            `json:"catalogs"`
	BehaviorHints BehaviorHints    `json:"behaviorHints"`
	Config        []ManifestConfig `json:"config"`
}

type BehaviorHints struct {
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired,omitempty"`
}

// ManifestConfig is one entry of the user settings form rendered by the host.
type ManifestConfig struct {
	Key      string   `json:"key"`
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Required bool     `json:"required"`
}

// NewManifest builds the manifest from the addon section of the config.
//
// Inputs:
//   - addon: Identity and artwork of the add-on.
//   - defaultLocale: Preselected value of the language setting.
//
// Outputs:
//   - Manifest: The descriptor, ready to be serialized.
func NewManifest(addon cloud.Addon, defaultLocale model.Locale) Manifest {
	return Manifest{
		ID:          addon.ID,
		Version:     addon.Version,
		Name:        addon.Name,
		Description: addon.Description,
		Logo:        addon.Logo,
		Background:  addon.Background,
		Resources:   []string{"stream"},
		Types:       []string{string(model.MediaTypeMovie), string(model.MediaTypeSeries)},
		IDPrefixes:  []string{"tt"},
		Catalogs:    []any{},
		BehaviorHints: BehaviorHints{
			Configurable:          addon.Configurable,
			ConfigurationRequired: addon.ConfigurationRequired,
		},
		Config: []ManifestConfig{
			{
				Key:      ConfigKeyLanguage,
				Type:     "select",
				Title:    "Trailer Language",
				Options:  model.LocaleCodes(),
				Default:  string(defaultLocale),
				Required: true,
			},
		},
	}
}
