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
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-streailer/internal/api"
	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// slowResolver answers after a delay that shrinks with the argument order, so
// later ids finish first.
type slowResolver struct {
	running atomic.Int32
	peak    atomic.Int32
}

func (s *slowResolver) Resolve(_ context.Context, req model.ResolutionRequest) []model.TrailerStream {
	n := s.running.Add(1)
	defer s.running.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	delay := 40 * time.Millisecond
	if strings.HasSuffix(req.ExternalID, "3") {
		delay = 5 * time.Millisecond
	}
	time.Sleep(delay)
	return []model.TrailerStream{{URL: model.YouTubeWatchURL(req.ExternalID), SourceProvider: "tmdb", Locale: model.Locale(req.Locale)}}
}

func TestResolveAllKeepsOrderAndBound(t *testing.T) {
	resolver := &slowResolver{}
	ids := []string{"tt0000001", "tt0000002", "tt0000003", "tt0000004"}

	results := resolveAll(context.Background(), resolver, ids, "movie", "fr-FR", 2)

	require.Len(t, results, len(ids))
	for i, r := range results {
		assert.Equal(t, ids[i], r.ID)
		assert.Equal(t, "movie", r.Type)
		require.Len(t, r.Streams, 1)
		assert.Equal(t, model.YouTubeWatchURL(ids[i]), r.Streams[0].URL)
	}
	assert.LessOrEqual(t, resolver.peak.Load(), int32(2))
}

func TestWriteResultsPrintsJSONLines(t *testing.T) {
	var out bytes.Buffer
	results := []resolveResult{
		{ID: "tt0111161", Type: "movie", Locale: "it-IT", Streams: []model.TrailerStream{}},
		{ID: "tt7366338:4", Type: "series", Locale: "it-IT", Streams: []model.TrailerStream{{URL: "https://www.youtube.com/watch?v=s4Trl", SourceProvider: "youtube"}}},
	}

	require.NoError(t, writeResults(&out, results))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var first resolveResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "tt0111161", first.ID)
	assert.Empty(t, first.Streams)
	assert.Contains(t, lines[1], `"url":"https://www.youtube.com/watch?v=s4Trl"`)
}

func TestLocalesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"locales"})

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(model.SupportedLocales))
	assert.True(t, strings.HasPrefix(lines[0], "en-US\t"))
}

func TestManifestCommandUsesConfiguration(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, "")
	t.Setenv(cloud.EnvConfigRuntime, "")
	t.Setenv("STREAILER_DEFAULT_LOCALE", "es-MX")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"manifest", "--config-dir", t.TempDir(), "--runtime", "test"})

	require.NoError(t, rootCmd.Execute())

	var manifest api.Manifest
	require.NoError(t, json.Unmarshal(out.Bytes(), &manifest))
	assert.Equal(t, "org.streailer.trailer", manifest.ID)
	require.Len(t, manifest.Config, 1)
	assert.Equal(t, "es-MX", manifest.Config[0].Default)
}
