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

// This file implements the remote resolution audit sinks. Both are fire and
// forget from the resolver's point of view: Record never blocks on the
// network and a sink failure is logged, never returned.
//
// Structs:
//   - BigQueryRecorder: Buffers resolutions and streams them into a table in batches.
//   - PubSubRecorder: Publishes every resolution as a JSON message.
package cloud

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// RowInserter is the part of *bigquery.Inserter the recorder uses.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// BigQueryRecorder streams resolutions into BigQuery. Rows are buffered and
// written when BatchSize rows are pending or FlushInterval has elapsed.
type BigQueryRecorder struct {
	inserter      RowInserter
	batchSize     int
	flushInterval time.Duration

	mu     sync.RWMutex
	closed bool
	rows   chan *model.Resolution
	done   chan struct{}
}

// NewBigQueryRecorder starts the background writer. Close flushes and stops it.
//
// Inputs:
//   - inserter: Usually client.Dataset(d).Table(t).Inserter().
//   - batchSize: Rows per insert call.
//   - flushInterval: Maximum time a row waits in the buffer.
//
// Outputs:
//   - *BigQueryRecorder: The running recorder.
func NewBigQueryRecorder(inserter RowInserter, batchSize int, flushInterval time.Duration) *BigQueryRecorder {
	if batchSize < 1 {
		batchSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	out := &BigQueryRecorder{
		inserter:      inserter,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		rows:          make(chan *model.Resolution, batchSize*4),
		done:          make(chan struct{}),
	}
	go out.run()
	return out
}

// Record queues the resolution. When the buffer is full, or the recorder is
// closed, the row is dropped.
func (r *BigQueryRecorder) Record(ctx context.Context, resolution *model.Resolution) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.rows <- resolution:
	default:
		slog.WarnContext(ctx, "bigquery audit buffer full, dropping resolution", "id", resolution.Id)
	}
}

func (r *BigQueryRecorder) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]*model.Resolution, 0, r.batchSize)
	for {
		select {
		case row, ok := <-r.rows:
			if !ok {
				r.flush(batch)
				return
			}
			batch = append(batch, row)
			if len(batch) >= r.batchSize {
				r.flush(batch)
				batch = make([]*model.Resolution, 0, r.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = make([]*model.Resolution, 0, r.batchSize)
			}
		}
	}
}

func (r *BigQueryRecorder) flush(batch []*model.Resolution) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.inserter.Put(ctx, batch); err != nil {
		slog.Error("failed to write resolutions to bigquery", "rows", len(batch), "error", err)
		return
	}
	slog.Debug("resolutions written to bigquery", "rows", len(batch))
}

// Close writes the pending rows and stops the writer.
func (r *BigQueryRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.rows)
	r.mu.Unlock()
	<-r.done
}

// PubSubRecorder publishes each resolution to a topic as JSON, with the
// outcome as a message attribute so subscriptions can filter on it.
type PubSubRecorder struct {
	topic   *pubsub.Topic
	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

func NewPubSubRecorder(topic *pubsub.Topic) *PubSubRecorder {
	return &PubSubRecorder{topic: topic}
}

func (r *PubSubRecorder) Record(ctx context.Context, resolution *model.Resolution) {
	data, err := json.Marshal(resolution)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode resolution", "id", resolution.Id, "error", err)
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.pending.Add(1)
	r.mu.Unlock()
	result := r.topic.Publish(context.WithoutCancel(ctx), &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"outcome":    string(resolution.Outcome),
			"media_type": resolution.MediaType,
		},
	})
	go func() {
		defer r.pending.Done()
		if _, err := result.Get(context.Background()); err != nil {
			slog.Error("failed to publish resolution", "id", resolution.Id, "error", err)
		}
	}()
}

// Close waits for outstanding publishes and stops the topic's goroutines.
// Resolutions recorded after Close are dropped.
func (r *PubSubRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	r.pending.Wait()
	r.topic.Stop()
}
