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

// This file, `persistent.go`, defines the resolution audit record. It is the
// only object that outlives a request, and only when an audit sink (BigQuery,
// Pub/Sub) is configured.

package model

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how a resolution ended.
type Outcome string

const (
	OutcomeFound               Outcome = "found"
	OutcomeNotFound            Outcome = "not_found"
	OutcomeProviderUnavailable Outcome = "provider_unavailable"
	OutcomeAuthRejected        Outcome = "auth_rejected"
	OutcomeInvalidIdentifier   Outcome = "invalid_identifier"
)

// Outcomes lists every outcome, in reporting order.
var Outcomes = []Outcome{
	OutcomeFound,
	OutcomeNotFound,
	OutcomeProviderUnavailable,
	OutcomeAuthRejected,
	OutcomeInvalidIdentifier,
}

// Resolution is the audit record of one resolution.
type Resolution struct {
	Id              string    `json:"id" bigquery:"id"`
	CreateDate      time.Time `json:"create_date" bigquery:"create_date"`
	MediaType       string    `json:"media_type" bigquery:"media_type"`
	ExternalID      string    `json:"external_id" bigquery:"external_id"`
	Season          int       `json:"season,omitempty" bigquery:"season"`
	Episode         int       `json:"episode,omitempty" bigquery:"episode"`
	RequestedLocale string    `json:"requested_locale" bigquery:"requested_locale"`
	EffectiveLocale string    `json:"effective_locale" bigquery:"effective_locale"`
	Outcome         Outcome   `json:"outcome" bigquery:"outcome"`
	Step            string    `json:"step,omitempty" bigquery:"step"`
	SourceProvider  string    `json:"source_provider,omitempty" bigquery:"source_provider"`
	StreamURL       string    `json:"stream_url,omitempty" bigquery:"stream_url"`
	StreamLocale    string    `json:"stream_locale,omitempty" bigquery:"stream_locale"`
	Error           string    `json:"error,omitempty" bigquery:"error"`
	DurationMillis  int64     `json:"duration_millis" bigquery:"duration_millis"`
}

// NewResolution creates an audit record for a request, stamped with a random
// id and the current time.
func NewResolution(req ResolutionRequest) *Resolution {
	return &Resolution{
		Id:              uuid.NewString(),
		CreateDate:      time.Now(),
		MediaType:       req.MediaType,
		ExternalID:      req.ExternalID,
		Season:          req.Season,
		RequestedLocale: req.Locale,
	}
}
