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
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// DefaultProviderTimeout bounds a single provider call when none is configured.
const DefaultProviderTimeout = 8 * time.Second

// fallbackStep holds what the fallback steps share: the per-call timeout and
// the handling of a step's ProviderResult.
type fallbackStep struct {
	cor.BaseCommand
	timeout time.Duration
	// secondary steps query a provider other than the metadata provider. A
	// credential rejection there says nothing about the later steps.
	secondary bool
}

func newFallbackStep(name string, timeout time.Duration) fallbackStep {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	step := fallbackStep{BaseCommand: *cor.NewBaseCommand(name), timeout: timeout}
	// Steps read the reference from its well-known key; CtxIn is consumed by
	// the chain between steps.
	step.InputParamName = model.ReferenceKey
	return step
}

// reference returns the parsed reference, or nil.
func reference(context cor.Context) *model.ContentReference {
	ref, _ := context.Get(model.ReferenceKey).(*model.ContentReference)
	return ref
}

// requestedLocale returns the effective locale of the request.
func requestedLocale(context cor.Context) model.Locale {
	locale, _ := context.Get(model.LocaleKey).(model.Locale)
	return locale
}

// finish applies a step result to the context.
//
// A found stream becomes the step output, which ends the fallback chain. A
// fatal provider error is recorded on the context, which also ends it. Any
// other provider error is logged at WARN and the step yields nothing. Fatal
// errors of a secondary step are logged at ERROR and the chain continues.
func (s *fallbackStep) finish(context cor.Context, ref *model.ContentReference, locale model.Locale, result model.ProviderResult) {
	ctx := context.GetContext()
	switch result.Kind {
	case model.ResultFound:
		s.GetSuccessCounter().Add(ctx, 1)
		context.Add(model.StreamKey, result.Stream)
		context.Add(model.StepKey, s.GetName())
		context.Add(s.GetOutputParam(), result.Stream)
	case model.ResultNotFound:
		s.GetSuccessCounter().Add(ctx, 1)
		slog.DebugContext(ctx, "no trailer from step",
			"step", s.GetName(),
			"media_type", ref.MediaType,
			"id", ref.String(),
			"locale", locale)
	case model.ResultProviderError:
		s.GetErrorCounter().Add(ctx, 1)
		if providers.IsFatal(result.Err) {
			if !s.secondary {
				context.AddError(s.GetName(), result.Err)
				return
			}
			slog.ErrorContext(ctx, "secondary provider rejected its credential, continuing with next step",
				"step", s.GetName(),
				"media_type", ref.MediaType,
				"id", ref.String(),
				"locale", locale,
				"error", result.Err)
			return
		}
		slog.WarnContext(ctx, "provider step failed, continuing with next step",
			"step", s.GetName(),
			"media_type", ref.MediaType,
			"id", ref.String(),
			"locale", locale,
			"error", result.Err)
	}
}
