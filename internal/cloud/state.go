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

// This file initializes and holds the Google Cloud clients of the add-on. The
// add-on runs without any of them: BigQuery is only opened when an audit
// dataset is configured, and Pub/Sub only when an audit topic or a request
// subscription is.
//
// Logic Flow:
//  1. The `NewCloudServiceClients` function is called at application startup.
//  2. It opens the clients the configuration asks for.
//  3. It creates the audit recorders and the Pub/Sub listeners.
//  4. Everything is bundled into a single `ServiceClients` struct, closed on shutdown.
package cloud

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"

	"github.com/jaycherian/gcp-go-streailer/internal/core/services"
)

// ServiceClients is the container of every open Google Cloud client and the
// components built on them.
type ServiceClients struct {
	PubsubClient    *pubsub.Client             // nil unless Pub/Sub is configured
	BiqQueryClient  *bigquery.Client           // nil unless BigQuery auditing is configured
	PubSubListeners map[string]*PubSubListener // keyed by the logical name from the config
	BigQueryAudit   *BigQueryRecorder
	PubSubAudit     *PubSubRecorder
}

// Recorders returns the configured remote audit recorders.
func (c *ServiceClients) Recorders() []services.ResolutionRecorder {
	out := make([]services.ResolutionRecorder, 0, 2)
	if c.BigQueryAudit != nil {
		out = append(out, c.BigQueryAudit)
	}
	if c.PubSubAudit != nil {
		out = append(out, c.PubSubAudit)
	}
	return out
}

// Close flushes the recorders and shuts down the client connections.
func (c *ServiceClients) Close() {
	if c.BigQueryAudit != nil {
		c.BigQueryAudit.Close()
	}
	if c.PubSubAudit != nil {
		c.PubSubAudit.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BiqQueryClient != nil {
		_ = c.BiqQueryClient.Close()
	}
}

// NewCloudServiceClients opens the Google Cloud clients required by the
// configuration.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	needsPubSub := config.Audit.PubSubTopic != "" || len(config.TopicSubscriptions) > 0
	needsBigQuery := config.Audit.BigQueryDataset != ""
	if (needsPubSub || needsBigQuery) && config.Application.GoogleProjectId == "" {
		return nil, errors.New("google_project_id is required for pubsub or bigquery")
	}

	if needsPubSub {
		cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, err
		}
		if config.Audit.PubSubTopic != "" {
			cloud.PubSubAudit = NewPubSubRecorder(cloud.PubsubClient.Topic(config.Audit.PubSubTopic))
		}
		for subKey, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
			if err != nil {
				cloud.Close()
				return nil, err
			}
			cloud.PubSubListeners[subKey] = listener
		}
	}

	if needsBigQuery {
		cloud.BiqQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			cloud.Close()
			return nil, err
		}
		inserter := cloud.BiqQueryClient.Dataset(config.Audit.BigQueryDataset).Table(config.Audit.BigQueryTable).Inserter()
		cloud.BigQueryAudit = NewBigQueryRecorder(inserter, config.Audit.BatchSize, config.Audit.FlushInterval)
	}

	slog.Info("cloud clients ready",
		"pubsub", cloud.PubsubClient != nil,
		"bigquery", cloud.BiqQueryClient != nil,
		"listeners", len(cloud.PubSubListeners))
	return cloud, nil
}
