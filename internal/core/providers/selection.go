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

package providers

import (
	"slices"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// Candidate ranks, lowest wins.
const (
	RankOfficialTrailer = iota
	RankTrailer
	RankOfficialTeaser
	RankTeaser
)

// trailerKeywords are matched case-insensitively against hosting search titles.
var trailerKeywords = []string{
	"trailer",
	"tráiler",
	"teaser",
	"bande-annonce",
	"bande annonce",
	"трейлер",
	"тизер",
	"予告",
	"トレーラー",
	"ट्रेलर",
	"fragman",
	"fragmanı",
}

// Rank returns the selection rank of a metadata candidate and whether it is
// eligible at all. Only trailers and teasers hosted on a playable site are.
func Rank(c model.Candidate) (int, bool) {
	if c.Key == "" || c.URL() == "" {
		return 0, false
	}
	switch {
	case strings.EqualFold(c.Type, model.VideoTypeTrailer) && c.Official:
		return RankOfficialTrailer, true
	case strings.EqualFold(c.Type, model.VideoTypeTrailer):
		return RankTrailer, true
	case strings.EqualFold(c.Type, model.VideoTypeTeaser) && c.Official:
		return RankOfficialTeaser, true
	case strings.EqualFold(c.Type, model.VideoTypeTeaser):
		return RankTeaser, true
	}
	return 0, false
}

type ranked struct {
	rank      int
	index     int
	candidate model.Candidate
}

// SelectTrailer picks the best metadata candidate for the locale.
//
// Candidates in another language are discarded when locale is set. The rest
// are ordered by rank, then by their position in the provider response, which
// makes the choice a total order over the input: identical upstream data
// always selects the same video.
//
// Inputs:
//   - candidates: The provider's videos in provider order.
//   - locale: The locale the step asked for; empty disables the language filter.
//
// Outputs:
//   - model.Candidate: The selected candidate.
//   - bool: False when no candidate is eligible.
func SelectTrailer(candidates []model.Candidate, locale model.Locale) (model.Candidate, bool) {
	eligible := make([]ranked, 0, len(candidates))
	for i, c := range candidates {
		if locale != "" && !strings.EqualFold(c.Language, locale.Language()) {
			continue
		}
		rank, ok := Rank(c)
		if !ok {
			continue
		}
		eligible = append(eligible, ranked{rank: rank, index: i, candidate: c})
	}
	if len(eligible) == 0 {
		return model.Candidate{}, false
	}
	slices.SortStableFunc(eligible, func(a, b ranked) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return a.index - b.index
	})
	return eligible[0].candidate, true
}

// IsTrailerTitle reports whether a hosting search result title looks like a
// trailer in any of the supported languages.
func IsTrailerTitle(title string) bool {
	title = strings.ToLower(title)
	for _, k := range trailerKeywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}

// FirstRelevant returns the first hosting search result, in provider order,
// whose title marks it as a trailer.
func FirstRelevant(candidates []model.Candidate) (model.Candidate, bool) {
	for _, c := range candidates {
		if c.Key != "" && IsTrailerTitle(c.Name) {
			return c, true
		}
	}
	return model.Candidate{}, false
}

// SearchQuery builds the hosting search key for a reference. The resolved
// title name is preferred; the external id is used when no title is known.
func SearchQuery(ref model.ContentReference, title *model.Title) string {
	key := ref.ExternalID
	if title != nil && strings.TrimSpace(title.Name) != "" {
		key = strings.TrimSpace(title.Name)
		if title.Year != "" {
			key += " " + title.Year
		}
	}
	if ref.HasSeason() {
		return key + " season " + strconv.Itoa(ref.Season) + " trailer"
	}
	return key + " trailer"
}
