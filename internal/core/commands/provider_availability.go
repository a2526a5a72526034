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
	"fmt"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// ProviderAvailability stops the workflow when the primary metadata provider
// has no credential. It performs no network I/O and passes its input through.
type ProviderAvailability struct {
	cor.BaseCommand
	metadata providers.MetadataProvider
}

func NewProviderAvailability(name string, metadata providers.MetadataProvider) *ProviderAvailability {
	return &ProviderAvailability{BaseCommand: *cor.NewBaseCommand(name), metadata: metadata}
}

func (c *ProviderAvailability) Execute(context cor.Context) {
	if c.metadata == nil || !c.metadata.HasCredentials() {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("primary metadata provider: %w: no credential configured", providers.ErrUnavailable))
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), context.Get(c.GetInputParam()))
}
