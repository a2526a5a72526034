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

package services

import (
	"context"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// Stats is an in-process ResolutionRecorder keeping outcome counters for the
// stats endpoint. It is safe for concurrent use.
type Stats struct {
	mu       sync.Mutex
	started  time.Time
	total    int64
	outcomes map[model.Outcome]int64
	steps    map[string]int64
	locales  map[string]int64
	last     time.Time
}

// StatsSnapshot is a point in time copy of Stats.
type StatsSnapshot struct {
	StartedAt      time.Time        `json:"started_at"`
	UptimeSeconds  int64            `json:"uptime_seconds"`
	Total          int64            `json:"total"`
	Outcomes       map[string]int64 `json:"outcomes"`
	ServingSteps   map[string]int64 `json:"serving_steps"`
	Locales        map[string]int64 `json:"locales"`
	LastResolution *time.Time       `json:"last_resolution,omitempty"`
}

func NewStats() *Stats {
	out := &Stats{
		started:  time.Now(),
		outcomes: make(map[model.Outcome]int64),
		steps:    make(map[string]int64),
		locales:  make(map[string]int64),
	}
	for _, o := range model.Outcomes {
		out.outcomes[o] = 0
	}
	return out
}

func (s *Stats) Record(_ context.Context, resolution *model.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.outcomes[resolution.Outcome]++
	if resolution.Step != "" {
		s.steps[resolution.Step]++
	}
	if resolution.EffectiveLocale != "" {
		s.locales[resolution.EffectiveLocale]++
	}
	s.last = resolution.CreateDate
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := StatsSnapshot{
		StartedAt:     s.started,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Total:         s.total,
		Outcomes:      make(map[string]int64, len(s.outcomes)),
		ServingSteps:  make(map[string]int64, len(s.steps)),
		Locales:       make(map[string]int64, len(s.locales)),
	}
	for k, v := range s.outcomes {
		out.Outcomes[string(k)] = v
	}
	for k, v := range s.steps {
		out.ServingSteps[k] = v
	}
	for k, v := range s.locales {
		out.Locales[k] = v
	}
	if !s.last.IsZero() {
		last := s.last
		out.LastResolution = &last
	}
	return out
}
