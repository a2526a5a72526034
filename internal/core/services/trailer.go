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

// Package services contains the transport independent entry points of the
// add-on. This file, `trailer.go`, defines the TrailerService, the trailer
// resolver every transport (HTTP add-on routes, CLI, Pub/Sub) calls into.
//
// Logic Flow:
//  1. A fresh cor.Context is created per call with the request in cor.CtxIn.
//  2. The TrailerResolutionWorkflow runs the availability check, parsing and
//     the three step fallback chain.
//  3. The context is inspected to classify the outcome (found, not found,
//     provider unavailable, auth rejected, invalid identifier).
//  4. The outcome is logged, counted, and handed to the audit recorders.
//  5. Zero or one stream is returned. No error ever reaches the caller.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
	"github.com/jaycherian/gcp-go-streailer/internal/core/workflow"
)

const tracerName = "github.com/jaycherian/gcp-go-streailer/internal/core/services"

// ResolutionRecorder receives the audit record of every resolution. Record
// must not block the request for long; remote sinks buffer internally.
type ResolutionRecorder interface {
	Record(ctx context.Context, resolution *model.Resolution)
}

// TrailerService resolves content references into trailer streams.
type TrailerService struct {
	workflow  *workflow.TrailerResolutionWorkflow
	recorders []ResolutionRecorder

	tracer          trace.Tracer
	outcomeCounter  metric.Int64Counter
	durationMillis  metric.Int64Histogram
	unavailableOnce sync.Once
}

// NewTrailerService builds the resolver.
//
// Inputs:
//   - options: Locales and the per-call provider timeout.
//   - metadata: The primary metadata provider.
//   - search: The hosting search provider; nil disables the hosting step.
//   - recorders: Audit sinks notified after every resolution.
//
// Outputs:
//   - *TrailerService: The ready to use service.
func NewTrailerService(options workflow.Options, metadata providers.MetadataProvider, search providers.SearchProvider, recorders ...ResolutionRecorder) *TrailerService {
	meter := otel.Meter(cor.MeterName)
	outcomeCounter, err := meter.Int64Counter("streailer.resolution.outcome")
	if err != nil {
		slog.Warn("error creating outcome counter", "error", err)
	}
	durationMillis, err := meter.Int64Histogram("streailer.resolution.duration", metric.WithUnit("ms"))
	if err != nil {
		slog.Warn("error creating duration histogram", "error", err)
	}
	return &TrailerService{
		workflow:       workflow.NewTrailerResolutionWorkflow(options, metadata, search),
		recorders:      recorders,
		tracer:         otel.Tracer(tracerName),
		outcomeCounter: outcomeCounter,
		durationMillis: durationMillis,
	}
}

// Options returns the effective resolution options.
func (s *TrailerService) Options() workflow.Options {
	return s.workflow.Options()
}

// Resolve returns zero or one trailer stream for the request. It never fails:
// every failure path ends in an empty slice and is reported through logs,
// metrics and the audit recorders.
func (s *TrailerService) Resolve(ctx context.Context, req model.ResolutionRequest) (out []model.TrailerStream) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "trailer-resolve")
	defer span.End()

	record := model.NewResolution(req)
	out = make([]model.TrailerStream, 0, 1)

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "trailer resolution panicked", "id", req.ExternalID, "panic", r)
			record.Outcome = model.OutcomeNotFound
			record.Error = fmt.Sprint(r)
			out = make([]model.TrailerStream, 0)
		}
		record.DurationMillis = time.Since(start).Milliseconds()
		s.report(ctx, record)
	}()

	chCtx := cor.NewBaseContext(ctx)
	chCtx.Add(cor.CtxIn, &req)
	s.workflow.Execute(chCtx)

	s.classify(chCtx, req, record)
	if stream, ok := chCtx.Get(model.StreamKey).(*model.TrailerStream); ok && stream != nil && record.Outcome == model.OutcomeFound {
		out = append(out, *stream)
	}
	span.SetAttributes(
		attribute.String("streailer.outcome", string(record.Outcome)),
		attribute.String("streailer.step", record.Step),
	)
	return out
}

// classify fills the outcome fields of record from the workflow context.
func (s *TrailerService) classify(chCtx cor.Context, req model.ResolutionRequest, record *model.Resolution) {
	if locale, ok := chCtx.Get(model.LocaleKey).(model.Locale); ok {
		record.EffectiveLocale = string(locale)
	} else {
		record.EffectiveLocale = string(model.NormalizeLocale(req.Locale, s.Options().DefaultLocale))
	}
	if ref, ok := chCtx.Get(model.ReferenceKey).(*model.ContentReference); ok {
		record.MediaType = string(ref.MediaType)
		record.ExternalID = ref.ExternalID
		record.Season = ref.Season
		record.Episode = ref.Episode
	}

	if chCtx.HasErrors() {
		err := errors.Join(errorsOf(chCtx)...)
		record.Error = err.Error()
		switch {
		case errors.Is(err, providers.ErrUnavailable):
			record.Outcome = model.OutcomeProviderUnavailable
		case errors.Is(err, providers.ErrUnauthorized):
			record.Outcome = model.OutcomeAuthRejected
		case errors.Is(err, model.ErrInvalidIdentifier):
			record.Outcome = model.OutcomeInvalidIdentifier
		default:
			record.Outcome = model.OutcomeNotFound
		}
		return
	}

	stream, ok := chCtx.Get(model.StreamKey).(*model.TrailerStream)
	if !ok || stream == nil {
		record.Outcome = model.OutcomeNotFound
		return
	}
	record.Outcome = model.OutcomeFound
	record.Step, _ = chCtx.Get(model.StepKey).(string)
	record.SourceProvider = stream.SourceProvider
	record.StreamURL = stream.URL
	record.StreamLocale = string(stream.Locale)
}

func errorsOf(chCtx cor.Context) []error {
	out := make([]error, 0, len(chCtx.GetErrors()))
	for _, err := range chCtx.GetErrors() {
		out = append(out, err)
	}
	return out
}

// report logs, counts and records a finished resolution.
func (s *TrailerService) report(ctx context.Context, record *model.Resolution) {
	attrs := []any{
		"media_type", record.MediaType,
		"id", record.ExternalID,
		"season", record.Season,
		"locale", record.EffectiveLocale,
		"outcome", record.Outcome,
		"duration_ms", record.DurationMillis,
	}
	switch record.Outcome {
	case model.OutcomeFound:
		slog.InfoContext(ctx, "trailer resolved", append(attrs, "step", record.Step, "provider", record.SourceProvider, "url", record.StreamURL)...)
	case model.OutcomeProviderUnavailable:
		s.unavailableOnce.Do(func() {
			slog.WarnContext(ctx, "primary metadata provider is not configured, trailers are disabled", "error", record.Error)
		})
	case model.OutcomeAuthRejected:
		slog.ErrorContext(ctx, "provider rejected credentials", append(attrs, "error", record.Error)...)
	case model.OutcomeInvalidIdentifier:
		slog.InfoContext(ctx, "invalid identifier", append(attrs, "error", record.Error)...)
	default:
		slog.InfoContext(ctx, "no trailer found", attrs...)
	}

	if s.outcomeCounter != nil {
		s.outcomeCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", string(record.Outcome)),
			attribute.String("step", record.Step),
		))
	}
	if s.durationMillis != nil {
		s.durationMillis.Record(ctx, record.DurationMillis, metric.WithAttributes(
			attribute.String("outcome", string(record.Outcome)),
		))
	}
	for _, r := range s.recorders {
		r.Record(ctx, record)
	}
}
