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

// Package main is the entry point of the Streailer add-on server.
//
// The server loads the layered configuration, sets up logging and
// OpenTelemetry, wires the trailer service with its providers and audit
// recorders, starts the Pub/Sub request listeners when configured, and serves
// the add-on manifest and stream resources over HTTP with gin.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-streailer/internal/api"
	"github.com/jaycherian/gcp-go-streailer/internal/app"
	"github.com/jaycherian/gcp-go-streailer/internal/telemetry"
)

func main() {
	config := GetConfig()

	logCloser := telemetry.SetupLogging(config.Logging)
	defer func() { _ = logCloser.Close() }()
	slog.Info("Logging initialized", "level", config.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized", "exporter", config.Telemetry.Exporter)

	listeners := InitState(ctx, config)
	slog.Info("Initialized State")

	if config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(state.RouterOptions())

	srv := &http.Server{
		Addr:              config.ListenAddress(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("Server Ready", "address", srv.Addr, "manifest", "/manifest.json")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	cancel()
	if err := app.WaitForListeners(shutdownCtx, listeners); err != nil {
		slog.Error("Listeners did not stop in time", "error", err)
	}
	state.Close()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed", "error", err)
	}

	slog.Info("Server exiting")
}
