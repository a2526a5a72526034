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

package youtube

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// ErrNoInitialData means the page did not embed a search result document.
var ErrNoInitialData = errors.New("results page has no ytInitialData")

var initialDataMarkers = []string{
	"var ytInitialData =",
	`window["ytInitialData"] =`,
}

type textRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textRuns) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type videoRenderer struct {
	VideoID   string   `json:"videoId"`
	Title     textRuns `json:"title"`
	OwnerText textRuns `json:"ownerText"`
}

type initialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []struct {
								VideoRenderer *videoRenderer `json:"videoRenderer"`
							} `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

// ParseResultsPage extracts the videos of a YouTube results page in page
// order. Ads, channels, playlists and shelves are skipped.
//
// Inputs:
//   - html: The raw results page.
//
// Outputs:
//   - []model.Candidate: The videos found, possibly none.
//   - error: ErrNoInitialData or a decode error when the page is not usable.
func ParseResultsPage(html []byte) ([]model.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var payload string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		for _, marker := range initialDataMarkers {
			if i := strings.Index(text, marker); i >= 0 {
				payload = text[i+len(marker):]
				return false
			}
		}
		return true
	})
	if payload == "" {
		return nil, ErrNoInitialData
	}

	// The decoder stops after the first value, leaving the trailing `;`.
	var data initialData
	if err = json.NewDecoder(strings.NewReader(payload)).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode ytInitialData: %w", err)
	}

	out := make([]model.Candidate, 0)
	for _, section := range data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		for _, item := range section.ItemSectionRenderer.Contents {
			v := item.VideoRenderer
			if v == nil || v.VideoID == "" {
				continue
			}
			out = append(out, model.Candidate{
				Name:    v.Title.String(),
				Key:     v.VideoID,
				Site:    model.SiteYouTube,
				Channel: v.OwnerText.String(),
			})
		}
	}
	return out, nil
}
