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

// Package test provides utility functions and mock data to support the application's
// test suite. It helps in setting up a consistent test environment, loading
// test-specific configurations, and providing sample provider payloads.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/spf13/afero"

	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application configuration
// during test runs.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// TestConfigTOML is the base configuration used by the tests.
const TestConfigTOML = `
[application]
name = "streailer-test"
host = "127.0.0.1"
port = 7020
default_locale = "it-IT"
fallback_locale = "en-US"
provider_timeout = "2s"

[addon]
id = "org.streailer.trailer"
version = "1.0.0"
name = "Streailer"
description = "Trailers for movies and series in your language."
logo = "https://example.org/icon.png"
background = "https://example.org/background.png"

[tmdb]
base_url = "https://api.themoviedb.org/3"
api_key = "test-key"
requests_per_second = 50.0
burst = 50

[youtube]
base_url = "https://www.youtube.com"
api_base_url = "https://youtube.googleapis.com/"
max_results = 5
requests_per_second = 50.0
burst = 50

[logging]
level = "debug"

[telemetry]
exporter = "none"

[audit]
batch_size = 10
flush_interval = "1s"
`

// HandleErr fails the test when err is not nil.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS points the configuration loader at the test files.
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// ConfigFs returns an in-memory filesystem holding TestConfigTOML as the base
// configuration file.
func ConfigFs() (afero.Fs, error) {
	fs := afero.NewMemMapFs()
	if err := SetupOS(); err != nil {
		return nil, err
	}
	if err := afero.WriteFile(fs, "configs/.env.toml", []byte(TestConfigTOML), 0o644); err != nil {
		return nil, err
	}
	return fs, nil
}

// GetConfig is a singleton accessor for the test configuration.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		fs, err := ConfigFs()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config, err := cloud.Load(fs)
		if err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// GetTestResolutionRequestMessageText returns a resolution request as it
// arrives on the Pub/Sub subscription.
func GetTestResolutionRequestMessageText() string {
	return `{"type":"series","id":"tt7366338:4","language":"it-IT"}`
}

// TMDBFindMovieJSON is the /find answer for tt0111161.
const TMDBFindMovieJSON = `{
  "movie_results": [
    {
      "id": 278,
      "title": "Le ali della libertà",
      "original_title": "The Shawshank Redemption",
      "release_date": "1994-09-23"
    }
  ],
  "person_results": [],
  "tv_results": [],
  "tv_episode_results": [],
  "tv_season_results": []
}`

// TMDBFindSeriesJSON is the /find answer for tt7366338.
const TMDBFindSeriesJSON = `{
  "movie_results": [],
  "tv_results": [
    {
      "id": 87108,
      "name": "Chernobyl",
      "original_name": "Chernobyl",
      "first_air_date": "2019-05-06"
    }
  ]
}`

// TMDBFindEmptyJSON is the /find answer for an unknown id.
const TMDBFindEmptyJSON = `{"movie_results":[],"tv_results":[]}`

// TMDBMovieVideosJSON lists videos for movie 278 in mixed languages.
const TMDBMovieVideosJSON = `{
  "id": 278,
  "results": [
    {"iso_639_1": "it", "iso_3166_1": "IT", "name": "Teaser", "key": "itTeaser", "site": "YouTube", "type": "Teaser", "official": true},
    {"iso_639_1": "it", "iso_3166_1": "IT", "name": "Trailer italiano", "key": "itTrailer", "site": "YouTube", "type": "Trailer", "official": false},
    {"iso_639_1": "it", "iso_3166_1": "IT", "name": "Trailer ufficiale", "key": "itOfficial", "site": "YouTube", "type": "Trailer", "official": true},
    {"iso_639_1": "it", "iso_3166_1": "IT", "name": "Dietro le quinte", "key": "itBts", "site": "YouTube", "type": "Behind the Scenes", "official": true}
  ]
}`

// TMDBEmptyVideosJSON is a videos answer with no results.
const TMDBEmptyVideosJSON = `{"id": 87108, "results": []}`

// TMDBSeasonVideosJSON lists videos for season 4 of tv 87108.
const TMDBSeasonVideosJSON = `{
  "id": 1234,
  "results": [
    {"iso_639_1": "it", "iso_3166_1": "IT", "name": "Stagione 4 - Trailer ufficiale", "key": "s4it", "site": "YouTube", "type": "Trailer", "official": true}
  ]
}`

// TMDBInvalidKeyJSON is the body TMDB sends with an invalid api_key.
const TMDBInvalidKeyJSON = `{"status_code": 7, "status_message": "Invalid API key: You must be granted a valid key.", "success": false}`

// TMDBNotFoundJSON is the body TMDB sends for an unknown resource.
const TMDBNotFoundJSON = `{"status_code": 34, "status_message": "The resource you requested could not be found.", "success": false}`

// YouTubeResultsHTML is a trimmed results page carrying ytInitialData.
const YouTubeResultsHTML = `<!DOCTYPE html>
<html lang="en"><head><title>The Shawshank Redemption 1994 trailer - YouTube</title>
<script nonce="n1">var ytcfg = {"INNERTUBE_API_KEY":"x"};</script>
</head><body>
<script nonce="n2">var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[
{"adSlotRenderer":{}},
{"channelRenderer":{"channelId":"UC123","title":{"simpleText":"Trailers"}}},
{"videoRenderer":{"videoId":"reviewVid01","title":{"runs":[{"text":"The Shawshank Redemption - Full Review"}]},"ownerText":{"runs":[{"text":"Critic"}]}}},
{"videoRenderer":{"videoId":"6hB3S9bIaco","title":{"runs":[{"text":"The Shawshank Redemption (1994) Official Trailer #1"}]},"ownerText":{"runs":[{"text":"Movieclips Classic Trailers"}]}}},
{"videoRenderer":{"videoId":"secondTrl01","title":{"runs":[{"text":"Shawshank "},{"text":"Trailer HD"}]},"ownerText":{"runs":[{"text":"Fan"}]}}}
]}},{"continuationItemRenderer":{}}]}}}}};</script>
</body></html>`

// YouTubeEmptyResultsHTML is a results page without any video.
const YouTubeEmptyResultsHTML = `<html><body><script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[]}}}}};</script></body></html>`

// YouTubeDataAPISearchJSON is a Data API v3 search.list answer.
const YouTubeDataAPISearchJSON = `{
  "kind": "youtube#searchListResponse",
  "items": [
    {"kind": "youtube#searchResult", "id": {"kind": "youtube#channel", "channelId": "UC123"}, "snippet": {"title": "Trailers", "channelTitle": "Trailers"}},
    {"kind": "youtube#searchResult", "id": {"kind": "youtube#video", "videoId": "6hB3S9bIaco"}, "snippet": {"title": "The Shawshank Redemption (1994) Official Trailer #1", "channelTitle": "Movieclips Classic Trailers"}}
  ]
}`

// YouTubeKeyInvalidJSON is the Data API answer to an invalid key.
const YouTubeKeyInvalidJSON = `{
  "error": {
    "code": 400,
    "message": "API key not valid. Please pass a valid API key.",
    "errors": [{"message": "API key not valid. Please pass a valid API key.", "domain": "global", "reason": "badRequest"}],
    "status": "INVALID_ARGUMENT",
    "details": [{"@type": "type.googleapis.com/google.rpc.ErrorInfo", "reason": "API_KEY_INVALID", "domain": "googleapis.com"}]
  }
}`

// YouTubeQuotaExceededJSON is the Data API answer once the daily quota is spent.
const YouTubeQuotaExceededJSON = `{
  "error": {
    "code": 403,
    "message": "The request cannot be completed because you have exceeded your quota.",
    "errors": [{"message": "The request cannot be completed because you have exceeded your quota.", "domain": "youtube.quota", "reason": "quotaExceeded"}]
  }
}`
