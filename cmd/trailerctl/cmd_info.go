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

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-streailer/internal/api"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List the supported trailer locales",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, l := range model.SupportedLocales {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l.Code, l.Name); err != nil {
				return err
			}
		}
		return nil
	},
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the add-on manifest of the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := loadConfig(cmd, afero.NewOsFs())
		if err != nil {
			return err
		}
		manifest := api.NewManifest(config.Addon, config.ResolutionOptions().DefaultLocale)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	},
}
