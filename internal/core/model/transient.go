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

// This file, `transient.go`, holds the objects that live only for the duration
// of one resolution: provider candidates, the resolved title, the step result
// and the stream handed back to the caller.

package model

import (
	"fmt"
	"strings"
)

// Hosting sites a candidate may be played from.
const (
	SiteYouTube = "YouTube"
	SiteVimeo   = "Vimeo"
)

// Video types reported by the metadata provider that are eligible as trailers.
const (
	VideoTypeTrailer = "Trailer"
	VideoTypeTeaser  = "Teaser"
)

// Title is the metadata provider's resolution of an external id.
type Title struct {
	ProviderID   int       `json:"provider_id"`
	MediaType    MediaType `json:"media_type"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name,omitempty"`
	Year         string    `json:"year,omitempty"`
}

// Candidate is one video returned by a provider, in provider order.
type Candidate struct {
	Name     string `json:"name"`
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
	Language string `json:"language,omitempty"` // ISO 639-1, empty when unknown
	Region   string `json:"region,omitempty"`   // ISO 3166-1, empty when unknown
	Channel  string `json:"channel,omitempty"`
}

// URL returns the playable address of the candidate, or an empty string when
// the hosting site is not playable.
func (c Candidate) URL() string {
	switch {
	case strings.EqualFold(c.Site, SiteYouTube):
		return YouTubeWatchURL(c.Key)
	case strings.EqualFold(c.Site, SiteVimeo):
		return fmt.Sprintf("https://vimeo.com/%s", c.Key)
	}
	return ""
}

// YouTubeWatchURL builds the canonical watch address of a YouTube video.
func YouTubeWatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// TrailerStream is one playable result. Locale records the language actually
// served and is empty when the provider does not report one.
type TrailerStream struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	Locale         Locale `json:"locale,omitempty"`
	SourceProvider string `json:"source_provider"`
	YouTubeID      string `json:"youtube_id,omitempty"`
}

// NewTrailerStream builds the stream for a selected candidate.
func NewTrailerStream(c Candidate, locale Locale, provider string) *TrailerStream {
	out := &TrailerStream{
		URL:            c.URL(),
		Title:          c.Name,
		Locale:         locale,
		SourceProvider: provider,
	}
	if strings.EqualFold(c.Site, SiteYouTube) {
		out.YouTubeID = c.Key
	}
	return out
}

// ResultKind discriminates a ProviderResult.
type ResultKind int

const (
	ResultNotFound ResultKind = iota
	ResultFound
	ResultProviderError
)

// ProviderResult is the outcome of a single fallback step. It never leaves the
// resolver.
type ProviderResult struct {
	Kind   ResultKind
	Stream *TrailerStream
	Err    error
}

func Found(s *TrailerStream) ProviderResult { return ProviderResult{Kind: ResultFound, Stream: s} }

func NotFound() ProviderResult { return ProviderResult{Kind: ResultNotFound} }

func ProviderError(err error) ProviderResult {
	return ProviderResult{Kind: ResultProviderError, Err: err}
}
