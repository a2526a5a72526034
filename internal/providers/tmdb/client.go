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

// Package tmdb implements the primary metadata provider on top of the TMDB v3
// REST API.
//
// Logic Flow:
//  1. FindTitle maps an IMDb id to a TMDB movie or tv id with /find.
//  2. Videos lists the title's videos in one language. For a series with a
//     season the season list is asked first and the show list is the
//     fallback when the season has no videos.
//
// HTTP 401 and TMDB status_code 7 are credential rejections; 404 and
// status_code 34 mean the resource does not exist; anything else that is not
// a 2xx answer is transient.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// ProviderName identifies TMDB in streams and logs.
const ProviderName = "tmdb"

// TMDB API status codes carried in error bodies.
const (
	statusInvalidAPIKey    = 7
	statusResourceNotFound = 34
)

// Client is a providers.MetadataProvider backed by TMDB.
type Client struct {
	http   *cloud.QuotaAwareClient
	apiKey string
}

var _ providers.MetadataProvider = (*Client)(nil)

// NewClient creates a TMDB client from its configuration section.
func NewClient(config cloud.TMDB) *Client {
	return &Client{
		http: cloud.NewQuotaAwareClient(cloud.ClientOptions{
			Name:              ProviderName,
			BaseURL:           strings.TrimRight(config.BaseURL, "/"),
			RequestsPerSecond: config.RequestsPerSecond,
			Burst:             config.Burst,
		}),
		apiKey: strings.TrimSpace(config.APIKey),
	}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) HasCredentials() bool { return c.apiKey != "" }

type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

type findResponse struct {
	MovieResults []struct {
		ID            int    `json:"id"`
		Title         string `json:"title"`
		OriginalTitle string `json:"original_title"`
		ReleaseDate   string `json:"release_date"`
	} `json:"movie_results"`
	TVResults []struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		OriginalName string `json:"original_name"`
		FirstAirDate string `json:"first_air_date"`
	} `json:"tv_results"`
}

type videosResponse struct {
	ID      int `json:"id"`
	Results []struct {
		Language string `json:"iso_639_1"`
		Region   string `json:"iso_3166_1"`
		Name     string `json:"name"`
		Key      string `json:"key"`
		Site     string `json:"site"`
		Type     string `json:"type"`
		Official bool   `json:"official"`
	} `json:"results"`
}

// FindTitle resolves the IMDb id of ref to a TMDB title.
func (c *Client) FindTitle(ctx context.Context, ref model.ContentReference, locale model.Locale) (*model.Title, error) {
	var result findResponse
	err := c.get(ctx, "/find/{id}", map[string]string{"id": ref.ExternalID}, map[string]string{
		"external_source": "imdb_id",
		"language":        locale.String(),
	}, &result)
	if err != nil {
		return nil, err
	}

	switch ref.MediaType {
	case model.MediaTypeSeries:
		if len(result.TVResults) == 0 {
			return nil, providers.ErrNotFound
		}
		tv := result.TVResults[0]
		return &model.Title{ProviderID: tv.ID, MediaType: model.MediaTypeSeries, Name: tv.Name, OriginalName: tv.OriginalName, Year: year(tv.FirstAirDate)}, nil
	default:
		if len(result.MovieResults) == 0 {
			return nil, providers.ErrNotFound
		}
		movie := result.MovieResults[0]
		return &model.Title{ProviderID: movie.ID, MediaType: model.MediaTypeMovie, Name: movie.Title, OriginalName: movie.OriginalTitle, Year: year(movie.ReleaseDate)}, nil
	}
}

// Videos lists the videos of title in the language of locale, in TMDB order.
func (c *Client) Videos(ctx context.Context, title *model.Title, season int, locale model.Locale) ([]model.Candidate, error) {
	if title == nil {
		return nil, providers.ErrNotFound
	}
	id := strconv.Itoa(title.ProviderID)
	query := map[string]string{"language": locale.String()}

	if title.MediaType != model.MediaTypeSeries {
		return c.videos(ctx, "/movie/{id}/videos", map[string]string{"id": id}, query)
	}
	if season > 0 {
		out, err := c.videos(ctx, "/tv/{id}/season/{season}/videos", map[string]string{"id": id, "season": strconv.Itoa(season)}, query)
		switch {
		case err == nil && len(out) > 0:
			return out, nil
		case err != nil && !errors.Is(err, providers.ErrNotFound):
			return nil, err
		}
	}
	return c.videos(ctx, "/tv/{id}/videos", map[string]string{"id": id}, query)
}

func (c *Client) videos(ctx context.Context, path string, params, query map[string]string) ([]model.Candidate, error) {
	var result videosResponse
	if err := c.get(ctx, path, params, query, &result); err != nil {
		return nil, err
	}
	out := make([]model.Candidate, 0, len(result.Results))
	for _, v := range result.Results {
		out = append(out, model.Candidate{
			Name:     v.Name,
			Key:      v.Key,
			Site:     v.Site,
			Type:     v.Type,
			Official: v.Official,
			Language: v.Language,
			Region:   v.Region,
		})
	}
	return out, nil
}

// get performs one authenticated GET and maps failures onto the provider
// error taxonomy.
func (c *Client) get(ctx context.Context, path string, params, query map[string]string, result any) error {
	if !c.HasCredentials() {
		return providers.ErrUnavailable
	}
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(params).
		SetQueryParams(query).
		SetQueryParam("api_key", c.apiKey).
		SetHeader("Accept", "application/json").
		SetResult(result).
		SetError(&failure).
		Get(path)
	if err != nil {
		return providers.Transient(ProviderName, err)
	}
	return classify(resp, &failure)
}

func classify(resp *resty.Response, failure *apiError) error {
	if resp.IsSuccess() {
		return nil
	}
	status := fmt.Errorf("status %d: %s", resp.StatusCode(), failure.StatusMessage)
	switch {
	case resp.StatusCode() == http.StatusUnauthorized, failure.StatusCode == statusInvalidAPIKey:
		return providers.Unauthorized(ProviderName, status)
	case resp.StatusCode() == http.StatusNotFound, failure.StatusCode == statusResourceNotFound:
		return fmt.Errorf("%s: %w: %w", ProviderName, providers.ErrNotFound, status)
	}
	return providers.Transient(ProviderName, status)
}

func year(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
