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

// Package model defines the core data structures shared by the trailer
// resolution workflow, the providers and the transport adapters.
//
// This file covers the inbound side of a resolution: the media type, the
// content reference parsed out of a (possibly composite) identifier such as
// `tt7366338:4:2`, and the request envelope handed to the resolver.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MediaType is the kind of title a trailer is requested for.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// IdentifierSeparator splits the composite `<id>[:<season>[:<episode>]]` form.
const IdentifierSeparator = ":"

// ErrInvalidIdentifier is returned when the external id does not match the
// IMDb scheme. Resolution stops before any provider is contacted.
var ErrInvalidIdentifier = errors.New("invalid external identifier")

var externalIDPattern = regexp.MustCompile(`^tt\d+$`)

// NormalizeMediaType maps any value other than "series" to a movie.
func NormalizeMediaType(in string) MediaType {
	if strings.EqualFold(strings.TrimSpace(in), string(MediaTypeSeries)) {
		return MediaTypeSeries
	}
	return MediaTypeMovie
}

// ContentReference identifies the title a trailer is requested for. Season and
// Episode are zero when absent. Episode is carried for logging only; trailers
// are selected at season granularity.
type ContentReference struct {
	MediaType  MediaType `json:"media_type"`
	ExternalID string    `json:"external_id"`
	Season     int       `json:"season,omitempty"`
	Episode    int       `json:"episode,omitempty"`
}

// HasSeason reports whether a season-scoped lookup applies to this reference.
func (r ContentReference) HasSeason() bool {
	return r.MediaType == MediaTypeSeries && r.Season > 0
}

// String renders the reference back into its composite form.
func (r ContentReference) String() string {
	out := r.ExternalID
	if r.Season > 0 {
		out += IdentifierSeparator + strconv.Itoa(r.Season)
		if r.Episode > 0 {
			out += IdentifierSeparator + strconv.Itoa(r.Episode)
		}
	}
	return out
}

// ParseContentID parses a composite identifier into a ContentReference.
//
// The first segment is the canonical external id and must match `tt` followed
// by digits. A second segment that parses as a positive integer overrides the
// season argument; anything else in that position is ignored. A third segment
// is kept as the episode when it is a positive integer. Further segments are
// accepted and dropped.
//
// Inputs:
//   - mediaType: The raw media type; anything but "series" becomes a movie.
//   - id: The raw identifier, e.g. `tt0111161` or `tt7366338:4:2`.
//   - season: The season supplied out of band, zero when absent.
//
// Outputs:
//   - ContentReference: The parsed reference.
//   - error: ErrInvalidIdentifier (wrapped) when the external id is malformed.
func ParseContentID(mediaType string, id string, season int) (ContentReference, error) {
	ref := ContentReference{MediaType: NormalizeMediaType(mediaType)}
	if season > 0 {
		ref.Season = season
	}

	parts := strings.Split(strings.TrimSpace(id), IdentifierSeparator)
	ref.ExternalID = strings.TrimSpace(parts[0])
	if !externalIDPattern.MatchString(ref.ExternalID) {
		return ContentReference{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}

	if len(parts) >= 2 {
		if s, ok := positiveInt(parts[1]); ok {
			ref.Season = s
		}
	}
	if len(parts) >= 3 {
		if e, ok := positiveInt(parts[2]); ok {
			ref.Episode = e
		}
	}
	return ref, nil
}

func positiveInt(in string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ResolutionRequest is the raw, unvalidated input of a trailer resolution as
// received from a transport (HTTP add-on route, CLI, Pub/Sub message).
type ResolutionRequest struct {
	MediaType  string `json:"type"`
	ExternalID string `json:"id"`
	Season     int    `json:"season,omitempty"`
	Locale     string `json:"language,omitempty"`
}
