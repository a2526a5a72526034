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

// This file implements a wrapper around the resty HTTP client used for every
// outbound provider call. It adds a token bucket rate limiter in front of each
// request, so that the add-on stays inside the provider quotas.
//
// A request waits for a token as long as its context allows. It is never
// re-sent: a failed call is reported to the caller, which moves on to the next
// fallback step.
//
// Structs:
//   - QuotaAwareClient: A resty client and the limiter that guards it.
//
// Functions:
//   - NewQuotaAwareClient: A constructor to create a new rate limited client.
package cloud

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
)

// DefaultUserAgent is sent with every outbound provider request.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// ClientOptions configures a QuotaAwareClient.
type ClientOptions struct {
	Name              string  // provider name, used for metrics
	BaseURL           string  // optional base URL of every request
	RequestsPerSecond float64 // token refill rate
	Burst             int     // bucket size
	UserAgent         string
}

// QuotaAwareClient is a resty client whose requests first take a token from
// RateLimit.
type QuotaAwareClient struct {
	*resty.Client
	Name      string
	RateLimit *rate.Limiter

	waitCounter metric.Int64Counter
}

// NewQuotaAwareClient creates a rate limited client.
//
// Inputs:
//   - options: Provider name, base URL and limiter settings. A non positive
//     rate disables limiting.
//
// Outputs:
//   - *QuotaAwareClient: A pointer to the newly created wrapper.
func NewQuotaAwareClient(options ClientOptions) *QuotaAwareClient {
	limit := rate.Inf
	if options.RequestsPerSecond > 0 {
		limit = rate.Limit(options.RequestsPerSecond)
	}
	burst := options.Burst
	if burst < 1 {
		burst = 1
	}
	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	waitCounter, err := otel.Meter(cor.MeterName).Int64Counter("streailer.provider.throttled")
	if err != nil {
		waitCounter = nil
	}

	out := &QuotaAwareClient{
		Client:      resty.New().SetHeader("User-Agent", userAgent),
		Name:        options.Name,
		RateLimit:   rate.NewLimiter(limit, burst),
		waitCounter: waitCounter,
	}
	if options.BaseURL != "" {
		out.SetBaseURL(options.BaseURL)
	}
	out.OnBeforeRequest(out.throttle)
	return out
}

// throttle blocks until a token is available or the request context ends.
func (q *QuotaAwareClient) throttle(_ *resty.Client, req *resty.Request) error {
	ctx := req.Context()
	if q.RateLimit.Allow() {
		return nil
	}
	if q.waitCounter != nil {
		q.waitCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", q.Name)))
	}
	if err := q.RateLimit.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit: %w", q.Name, err)
	}
	return nil
}

// Wait takes a token for a call not made through the resty client.
func (q *QuotaAwareClient) Wait(ctx context.Context) error {
	if q.RateLimit.Allow() {
		return nil
	}
	return q.RateLimit.Wait(ctx)
}
