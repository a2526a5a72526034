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

package workflow

import (
	"github.com/jaycherian/gcp-go-streailer/internal/core/commands"
	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
)

// ResolutionRequestWorkflow handles one resolution request received as a
// Pub/Sub message: decode the JSON body, then resolve it. Results reach the
// configured audit recorders through the resolver.
type ResolutionRequestWorkflow struct {
	cor.BaseCommand
	resolver commands.Resolver
	chain    cor.Chain
}

func NewResolutionRequestWorkflow(resolver commands.Resolver) *ResolutionRequestWorkflow {
	out := &ResolutionRequestWorkflow{
		BaseCommand: *cor.NewBaseCommand("resolution-request-workflow"),
		resolver:    resolver,
	}
	out.initializeChain()
	return out
}

func (w *ResolutionRequestWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewResolutionRequestReader("resolution-request-reader"))
	out.AddCommand(commands.NewResolveRequest("resolution-request-resolve", w.resolver))
	w.chain = out
}

func (w *ResolutionRequestWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
