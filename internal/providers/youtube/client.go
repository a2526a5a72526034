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

// Package youtube implements the hosting search provider. With an API key the
// YouTube Data API v3 search.list endpoint is used; without one the public
// results page is fetched and its embedded ytInitialData document is parsed.
package youtube

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// ProviderName identifies YouTube in streams and logs.
const ProviderName = "youtube"

// Client is a providers.SearchProvider backed by YouTube.
type Client struct {
	http       *cloud.QuotaAwareClient
	api        *youtubeapi.Service
	maxResults int
}

var _ providers.SearchProvider = (*Client)(nil)

// NewClient creates a YouTube search client.
//
// Inputs:
//   - ctx: Used to build the Data API service when an API key is configured.
//   - config: The youtube configuration section.
//
// Outputs:
//   - *Client: The search client.
//   - error: An error if the Data API service cannot be created.
func NewClient(ctx context.Context, config cloud.YouTube) (*Client, error) {
	out := &Client{
		http: cloud.NewQuotaAwareClient(cloud.ClientOptions{
			Name:              ProviderName,
			BaseURL:           strings.TrimRight(config.BaseURL, "/"),
			RequestsPerSecond: config.RequestsPerSecond,
			Burst:             config.Burst,
		}),
		maxResults: config.MaxResults,
	}
	if out.maxResults <= 0 {
		out.maxResults = 5
	}
	if key := strings.TrimSpace(config.APIKey); key != "" {
		opts := []option.ClientOption{option.WithAPIKey(key)}
		if config.APIBaseURL != "" {
			opts = append(opts, option.WithEndpoint(config.APIBaseURL))
		}
		svc, err := youtubeapi.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create youtube data api service: %w", err)
		}
		out.api = svc
	}
	return out, nil
}

func (c *Client) Name() string { return ProviderName }

// UsesDataAPI reports whether searches go through the Data API.
func (c *Client) UsesDataAPI() bool { return c.api != nil }

// Search returns videos for query in YouTube relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	if c.api != nil {
		return c.searchDataAPI(ctx, query)
	}
	return c.searchResultsPage(ctx, query)
}

func (c *Client) searchResultsPage(ctx context.Context, query string) ([]model.Candidate, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_query": query,
			"hl":           "en",
		}).
		SetHeader("Accept-Language", "en-US,en;q=0.8").
		Get("/results")
	if err != nil {
		return nil, providers.Transient(ProviderName, err)
	}
	if !resp.IsSuccess() {
		status := fmt.Errorf("results page status %d", resp.StatusCode())
		if resp.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w: %w", ProviderName, providers.ErrNotFound, status)
		}
		return nil, providers.Transient(ProviderName, status)
	}

	out, err := ParseResultsPage(resp.Body())
	if err != nil {
		return nil, providers.Transient(ProviderName, err)
	}
	if len(out) > c.maxResults {
		out = out[:c.maxResults]
	}
	return out, nil
}
