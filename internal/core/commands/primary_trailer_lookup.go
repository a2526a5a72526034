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

// This file defines the metadata provider step. It is used twice in the
// resolution: first with the requested locale, then, after the hosting
// search, pinned to the fallback locale.
//
// Logic Flow:
//  1. Resolve the external id to a provider title. The title is cached on the
//     context, so the second use of the step does not look it up again.
//  2. List the title's videos in the step locale (season videos first for a
//     series with a season).
//  3. Select the best candidate in that locale and emit it as a stream.

package commands

import (
	"context"
	"errors"
	"time"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// PrimaryTrailerLookup queries the metadata provider for a trailer.
type PrimaryTrailerLookup struct {
	fallbackStep
	metadata    providers.MetadataProvider
	fixedLocale model.Locale
}

// NewPrimaryTrailerLookup is the constructor for the PrimaryTrailerLookup command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - metadata: The primary metadata provider.
//   - timeout: The bound of every single provider call.
//   - fixedLocale: When set, the step queries this locale instead of the
//     requested one, and is skipped when both are equal.
//
// Outputs:
//   - *PrimaryTrailerLookup: A pointer to the newly instantiated command.
func NewPrimaryTrailerLookup(name string, metadata providers.MetadataProvider, timeout time.Duration, fixedLocale model.Locale) *PrimaryTrailerLookup {
	return &PrimaryTrailerLookup{
		fallbackStep: newFallbackStep(name, timeout),
		metadata:     metadata,
		fixedLocale:  fixedLocale,
	}
}

// IsExecutable skips the fixed-locale variant when it would repeat the query
// of the requested-locale step.
func (c *PrimaryTrailerLookup) IsExecutable(chCtx cor.Context) bool {
	if !c.BaseCommand.IsExecutable(chCtx) {
		return false
	}
	return c.fixedLocale == "" || c.fixedLocale != requestedLocale(chCtx)
}

func (c *PrimaryTrailerLookup) locale(chCtx cor.Context) model.Locale {
	if c.fixedLocale != "" {
		return c.fixedLocale
	}
	return requestedLocale(chCtx)
}

func (c *PrimaryTrailerLookup) Execute(chCtx cor.Context) {
	ref := reference(chCtx)
	locale := c.locale(chCtx)
	c.finish(chCtx, ref, locale, c.lookup(chCtx, ref, locale))
}

func (c *PrimaryTrailerLookup) lookup(chCtx cor.Context, ref *model.ContentReference, locale model.Locale) model.ProviderResult {
	title, err := c.title(chCtx, ref, locale)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return model.NotFound()
		}
		return model.ProviderError(err)
	}

	season := 0
	if ref.HasSeason() {
		season = ref.Season
	}

	callCtx, cancel := context.WithTimeout(chCtx.GetContext(), c.timeout)
	defer cancel()
	candidates, err := c.metadata.Videos(callCtx, title, season, locale)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return model.NotFound()
		}
		return model.ProviderError(providers.Classify(c.metadata.Name(), err))
	}

	selected, ok := providers.SelectTrailer(candidates, locale)
	if !ok {
		return model.NotFound()
	}
	stream := model.NewTrailerStream(selected, locale, c.metadata.Name())
	if stream.Title == "" {
		stream.Title = title.Name
	}
	return model.Found(stream)
}

// title returns the provider title of the reference, resolving and caching it
// on first use. A catalog miss is cached as well; transient failures are not.
func (c *PrimaryTrailerLookup) title(chCtx cor.Context, ref *model.ContentReference, locale model.Locale) (*model.Title, error) {
	if resolved, _ := chCtx.Get(model.TitleResolvedKey).(bool); resolved {
		if title, ok := chCtx.Get(model.TitleKey).(*model.Title); ok && title != nil {
			return title, nil
		}
		return nil, providers.ErrNotFound
	}

	callCtx, cancel := context.WithTimeout(chCtx.GetContext(), c.timeout)
	defer cancel()
	title, err := c.metadata.FindTitle(callCtx, *ref, locale)
	switch {
	case errors.Is(err, providers.ErrNotFound), err == nil && title == nil:
		chCtx.Add(model.TitleResolvedKey, true)
		return nil, providers.ErrNotFound
	case err != nil:
		return nil, providers.Classify(c.metadata.Name(), err)
	}
	chCtx.Add(model.TitleResolvedKey, true)
	chCtx.Add(model.TitleKey, title)
	return title, nil
}
