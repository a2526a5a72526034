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

// Package app wires the configuration, providers, cloud clients and the
// trailer service together. Both binaries start from a StateManager.
package app

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-streailer/internal/api"
	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
	"github.com/jaycherian/gcp-go-streailer/internal/core/services"
	"github.com/jaycherian/gcp-go-streailer/internal/core/workflow"
	"github.com/jaycherian/gcp-go-streailer/internal/providers/tmdb"
	"github.com/jaycherian/gcp-go-streailer/internal/providers/youtube"
)

// StateManager holds the shared components of a running process.
type StateManager struct {
	Config         *cloud.Config
	Cloud          *cloud.ServiceClients // nil when cloud clients were not requested
	Stats          *services.Stats
	TrailerService *services.TrailerService
}

// NewProviders builds the metadata and hosting search providers. The search
// provider is nil when hosting search is disabled.
func NewProviders(ctx context.Context, config *cloud.Config) (providers.MetadataProvider, providers.SearchProvider, error) {
	metadata := tmdb.NewClient(config.TMDB)
	if config.YouTube.Disabled {
		return metadata, nil, nil
	}
	client, err := youtube.NewClient(ctx, config.YouTube)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("hosting search ready", "data_api", client.UsesDataAPI())
	return metadata, client, nil
}

// InitState builds the trailer service from the configuration.
//
// Inputs:
//   - ctx: The root context of the process.
//   - config: The loaded configuration.
//   - withCloud: Opens the BigQuery and Pub/Sub clients the configuration asks
//     for, and attaches their recorders to the service.
//
// Outputs:
//   - *StateManager: The wired components. Close releases them.
//   - error: Any failure while creating a client.
func InitState(ctx context.Context, config *cloud.Config, withCloud bool) (*StateManager, error) {
	out := &StateManager{Config: config, Stats: services.NewStats()}
	recorders := []services.ResolutionRecorder{out.Stats}

	if withCloud {
		clients, err := cloud.NewCloudServiceClients(ctx, config)
		if err != nil {
			return nil, err
		}
		out.Cloud = clients
		recorders = append(recorders, clients.Recorders()...)
	}

	metadata, search, err := NewProviders(ctx, config)
	if err != nil {
		out.Close()
		return nil, err
	}
	if !metadata.HasCredentials() {
		slog.Warn("TMDB api key is not configured, every request will return no streams")
	}
	out.TrailerService = services.NewTrailerService(config.ResolutionOptions(), metadata, search, recorders...)
	return out, nil
}

// Options returns the resolution options in effect.
func (s *StateManager) Options() workflow.Options {
	return s.TrailerService.Options()
}

// Manifest builds the add-on manifest of this configuration.
func (s *StateManager) Manifest() api.Manifest {
	return api.NewManifest(s.Config.Addon, s.DefaultLocale())
}

// RouterOptions returns the HTTP surface dependencies.
func (s *StateManager) RouterOptions() api.RouterOptions {
	return api.RouterOptions{
		ServiceName:   s.Config.Application.Name,
		Manifest:      s.Manifest(),
		Resolver:      s.TrailerService,
		Stats:         s.Stats,
		DefaultLocale: s.DefaultLocale(),
	}
}

// SetupListeners attaches the resolution request workflow to every configured
// subscription and starts listening. The returned channels close when the
// listeners stop.
func (s *StateManager) SetupListeners(ctx context.Context) []<-chan struct{} {
	if s.Cloud == nil {
		return nil
	}
	out := make([]<-chan struct{}, 0, len(s.Cloud.PubSubListeners))
	for name, listener := range s.Cloud.PubSubListeners {
		listener.SetCommand(workflow.NewResolutionRequestWorkflow(s.TrailerService))
		out = append(out, listener.Listen(ctx))
		slog.Info("listening for resolution requests", "subscription", name)
	}
	return out
}

// WaitForListeners blocks until every stop channel returned by SetupListeners
// is closed, or ctx is done. It returns ctx.Err() when the wait was cut short.
func WaitForListeners(ctx context.Context, stopped []<-chan struct{}) error {
	for _, ch := range stopped {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close flushes the audit recorders and closes the cloud clients.
func (s *StateManager) Close() {
	if s.Cloud != nil {
		s.Cloud.Close()
	}
}

// DefaultLocale is the locale applied to requests without a usable one.
func (s *StateManager) DefaultLocale() model.Locale {
	return s.Options().DefaultLocale
}
