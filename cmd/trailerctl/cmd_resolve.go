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
	"context"
	"encoding/json"
	"io"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-streailer/internal/app"
	"github.com/jaycherian/gcp-go-streailer/internal/core/commands"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>...",
	Short: "Resolve trailers for one or more identifiers",
	Long: `Resolve runs the full fallback chain for every identifier and prints one
JSON line per identifier, in argument order. Identifiers use the composite
form tt<digits>[:season[:episode]].`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("type", string(model.MediaTypeMovie), "Media type: movie or series")
	resolveCmd.Flags().String("locale", "", "Trailer locale, defaults to the configured default locale")
	resolveCmd.Flags().Int("parallel", 1, "Number of identifiers resolved concurrently")
}

// resolveResult is the JSON line printed for one identifier.
type resolveResult struct {
	ID      string                `json:"id"`
	Type    string                `json:"type"`
	Locale  string                `json:"locale"`
	Streams []model.TrailerStream `json:"streams"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd, afero.NewOsFs())
	if err != nil {
		return err
	}
	state, err := app.InitState(cmd.Context(), config, false)
	if err != nil {
		return err
	}
	defer state.Close()

	mediaType, _ := cmd.Flags().GetString("type")
	locale, _ := cmd.Flags().GetString("locale")
	parallel, _ := cmd.Flags().GetInt("parallel")

	results := resolveAll(cmd.Context(), state.TrailerService, args, mediaType, locale, parallel)
	return writeResults(cmd.OutOrStdout(), results)
}

// resolveAll resolves every id with at most parallel concurrent resolutions.
// Results keep the order of ids.
func resolveAll(ctx context.Context, resolver commands.Resolver, ids []string, mediaType, locale string, parallel int) []resolveResult {
	if parallel < 1 {
		parallel = 1
	}
	out := make([]resolveResult, len(ids))
	p := pool.New().WithMaxGoroutines(parallel)
	for i, id := range ids {
		i, id := i, id
		p.Go(func() {
			req := model.ResolutionRequest{MediaType: mediaType, ExternalID: id, Locale: locale}
			out[i] = resolveResult{
				ID:      id,
				Type:    string(model.NormalizeMediaType(mediaType)),
				Locale:  locale,
				Streams: resolver.Resolve(ctx, req),
			}
		})
	}
	p.Wait()
	return out
}

func writeResults(w io.Writer, results []resolveResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
