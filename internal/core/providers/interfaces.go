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

// Package providers defines the capabilities the trailer resolution workflow
// consumes from the outside world, the error categories providers report, and
// the deterministic candidate selection applied to their results.
//
// The concrete HTTP implementations live in internal/providers; this package
// only holds the contracts so the workflow can be exercised with mocks.
//
//go:generate mockgen -source=interfaces.go -destination=mocks/providers.go -package=mocks
package providers

import (
	"context"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// MetadataProvider is the primary catalog (TMDB). It resolves an external id
// to a title and lists the title's videos in a given locale.
type MetadataProvider interface {
	// Name identifies the provider in streams, logs and metrics.
	Name() string

	// HasCredentials reports whether an access credential is configured. It
	// must not perform network I/O.
	HasCredentials() bool

	// FindTitle resolves the external id of the reference. It returns
	// ErrNotFound when the catalog has no matching title.
	FindTitle(ctx context.Context, ref model.ContentReference, locale model.Locale) (*model.Title, error)

	// Videos lists the title's videos in the locale, in provider order. When
	// season is positive, season-level videos are preferred.
	Videos(ctx context.Context, title *model.Title, season int, locale model.Locale) ([]model.Candidate, error)
}

// SearchProvider is the locale-agnostic video hosting search (YouTube).
type SearchProvider interface {
	// Name identifies the provider in streams, logs and metrics.
	Name() string

	// Search runs a free text query and returns the results in provider order.
	Search(ctx context.Context, query string) ([]model.Candidate, error)
}
