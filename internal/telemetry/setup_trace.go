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

// This file initializes the OpenTelemetry SDK. The exporter is chosen by
// configuration: Cloud Trace and Cloud Monitoring (`gcp`), an OTLP/HTTP
// collector (`otlp`), or no export at all (`none`), in which case spans and
// metrics are still recorded by the SDK but dropped.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	telemetryexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
)

// SetupOpenTelemetry initializes the tracer and meter providers and
// registers them globally. The returned shutdown function flushes and stops
// both; callers defer it.
//
// Inputs:
//   - ctx: The parent context, used for initialization of the exporters.
//   - config: The application configuration (service name, project, exporter).
//
// Returns:
//   - shutdown: Tears down every telemetry component that was started.
//   - err: An error if any part of the setup fails.
func SetupOpenTelemetry(ctx context.Context, config *cloud.Config) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	detectors := []resource.Option{
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.Application.Name),
			semconv.ServiceVersionKey.String(config.Addon.Version),
		),
	}
	if config.Telemetry.Exporter == cloud.ExporterGCP {
		detectors = append(detectors, resource.WithDetectors(gcp.NewDetector()))
	}
	res, err := resource.New(ctx, detectors...)
	if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
		slog.Warn("partial resource detection", "error", err)
	} else if err != nil {
		slog.Error("resource.New failed", "error", err)
		return nil, err
	}

	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())

	traceExporter, metricExporter, err := newExporters(ctx, config)
	if err != nil {
		return nil, err
	}

	traceOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if traceExporter != nil {
		traceOptions = append(traceOptions, sdktrace.WithBatcher(traceExporter))
	}
	tp := sdktrace.NewTracerProvider(traceOptions...)
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	metricOptions := []metric.Option{metric.WithResource(res)}
	if metricExporter != nil {
		var readerOptions []metric.PeriodicReaderOption
		if config.Telemetry.MetricInterval > 0 {
			readerOptions = append(readerOptions, metric.WithInterval(config.Telemetry.MetricInterval))
		}
		metricOptions = append(metricOptions, metric.WithReader(metric.NewPeriodicReader(metricExporter, readerOptions...)))
	}
	mProvider := metric.NewMeterProvider(metricOptions...)
	shutdownFuncs = append(shutdownFuncs, mProvider.Shutdown)
	otel.SetMeterProvider(mProvider)

	slog.Info("telemetry initialized", "exporter", config.Telemetry.Exporter)
	return shutdown, nil
}

func newExporters(ctx context.Context, config *cloud.Config) (sdktrace.SpanExporter, metric.Exporter, error) {
	switch config.Telemetry.Exporter {
	case cloud.ExporterGCP:
		traceExporter, err := telemetryexporter.New(telemetryexporter.WithProjectID(config.Application.GoogleProjectId))
		if err != nil {
			return nil, nil, fmt.Errorf("unable to set up trace exporter: %w", err)
		}
		metricExporter, err := mexporter.New(mexporter.WithProjectID(config.Application.GoogleProjectId))
		if err != nil {
			return nil, nil, fmt.Errorf("unable to set up metric exporter: %w", err)
		}
		return traceExporter, metricExporter, nil

	case cloud.ExporterOTLP:
		traceOpts := []otlptracehttp.Option{}
		metricOpts := []otlpmetrichttp.Option{}
		if config.Telemetry.OTLPEndpoint != "" {
			traceOpts = append(traceOpts, otlptracehttp.WithEndpoint(config.Telemetry.OTLPEndpoint))
			metricOpts = append(metricOpts, otlpmetrichttp.WithEndpoint(config.Telemetry.OTLPEndpoint))
		}
		if config.Telemetry.OTLPInsecure {
			traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
			metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		}
		traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to set up otlp trace exporter: %w", err)
		}
		metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to set up otlp metric exporter: %w", err)
		}
		return traceExporter, metricExporter, nil
	}
	return nil, nil, nil
}
