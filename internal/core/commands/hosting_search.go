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

package commands

import (
	"context"
	"errors"
	"time"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// HostingSearch runs a locale-agnostic search on the video hosting provider
// and accepts the first result that looks like a trailer. The stream it emits
// has no locale, since the hosting provider does not report one.
type HostingSearch struct {
	fallbackStep
	search providers.SearchProvider
}

func NewHostingSearch(name string, search providers.SearchProvider, timeout time.Duration) *HostingSearch {
	step := newFallbackStep(name, timeout)
	step.secondary = true
	return &HostingSearch{fallbackStep: step, search: search}
}

func (c *HostingSearch) IsExecutable(chCtx cor.Context) bool {
	return c.search != nil && c.BaseCommand.IsExecutable(chCtx)
}

func (c *HostingSearch) Execute(chCtx cor.Context) {
	ref := reference(chCtx)
	title, _ := chCtx.Get(model.TitleKey).(*model.Title)
	c.finish(chCtx, ref, "", c.lookup(chCtx.GetContext(), providers.SearchQuery(*ref, title)))
}

func (c *HostingSearch) lookup(ctx context.Context, query string) model.ProviderResult {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results, err := c.search.Search(callCtx, query)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return model.NotFound()
		}
		return model.ProviderError(providers.Classify(c.search.Name(), err))
	}
	selected, ok := providers.FirstRelevant(results)
	if !ok {
		return model.NotFound()
	}
	return model.Found(model.NewTrailerStream(selected, "", c.search.Name()))
}
