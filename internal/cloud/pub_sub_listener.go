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

// This file defines a Pub/Sub message listener. Receiving is delegated to the
// client library; each message body is handed to a cor.Command in cor.CtxIn.
//
// Logic Flow:
//  1. An instance of PubSubListener is created with a client and a subscription ID.
//  2. A "Command" (the resolution request workflow) is attached to this listener.
//  3. The `Listen` method starts a goroutine receiving messages until its
//     context is canceled.
//  4. Each message runs the command in its own span.
//  5. Every message is acknowledged. A request that cannot be decoded will
//     not decode on redelivery either, and resolution failures are already
//     reported by the resolver.
//
// Structs:
//   - PubSubListener: Holds the subscription and the command that processes its messages.
//
// Functions:
//   - NewPubSubListener: Constructor for creating a new PubSubListener.
//   - SetCommand: Attaches a processing command to the listener.
//   - Listen: Starts the background process to receive and handle messages.
package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
)

// PubSubListener connects a subscription to a processing command.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
}

// NewPubSubListener is the constructor for creating a PubSubListener.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client for connecting to the service.
//   - subscriptionID: The string ID of the subscription (e.g., "my-subscription").
//   - command: A cor.Command to execute on each message; may be set later.
//
// Outputs:
//   - *PubSubListener: A pointer to the newly created and configured listener.
//   - error: Always nil; kept for symmetry with the other constructors.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(subscriptionID),
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches a command unless one is already set.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts receiving in a background goroutine. The returned channel is
// closed once receiving has stopped.
//
// Inputs:
//   - ctx: Controls the lifecycle of the listener; cancel it to stop receiving.
func (m *PubSubListener) Listen(ctx context.Context) <-chan struct{} {
	stopped := make(chan struct{})
	slog.Info("listening", "subscription", m.subscription.String())

	go func() {
		defer close(stopped)
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(msgCtx, "receive-message")
			defer span.End()
			span.SetAttributes(
				attribute.String("messaging.message_id", msg.ID),
				attribute.String("msg", string(msg.Data)),
			)

			chainCtx := cor.NewBaseContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))
			if m.command != nil {
				m.command.Execute(chainCtx)
			}

			if chainCtx.HasErrors() {
				span.SetStatus(codes.Error, "failed")
				for _, e := range chainCtx.GetErrors() {
					slog.ErrorContext(spanCtx, "error executing chain", "message_id", msg.ID, "error", e)
				}
			} else {
				span.SetStatus(codes.Ok, "success")
			}
			msg.Ack()
		})
		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.String(), "error", err)
		}
	}()
	return stopped
}
