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

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// Resolver is the trailer resolution entry point, implemented by
// services.TrailerService.
type Resolver interface {
	Resolve(ctx context.Context, req model.ResolutionRequest) []model.TrailerStream
}

// ResolveRequest runs a full resolution for the request in its input and
// outputs the resulting streams. Resolution never fails; an empty slice is a
// valid output.
type ResolveRequest struct {
	cor.BaseCommand
	resolver Resolver
}

func NewResolveRequest(name string, resolver Resolver) *ResolveRequest {
	return &ResolveRequest{BaseCommand: *cor.NewBaseCommand(name), resolver: resolver}
}

func (c *ResolveRequest) Execute(chCtx cor.Context) {
	req, ok := chCtx.Get(c.GetInputParam()).(*model.ResolutionRequest)
	if !ok {
		c.GetErrorCounter().Add(chCtx.GetContext(), 1)
		return
	}
	streams := c.resolver.Resolve(chCtx.GetContext(), *req)
	c.GetSuccessCounter().Add(chCtx.GetContext(), 1)
	chCtx.Add(c.GetOutputParam(), streams)
}
