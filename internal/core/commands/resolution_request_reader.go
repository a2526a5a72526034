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

// This file defines the entry command of the Pub/Sub driven resolution
// workflow. Upstream systems (catalog ingestion, cache warmers) publish
// resolution requests as JSON:
//
//	{"type": "series", "id": "tt7366338:4", "language": "it-IT"}
//
// The command decodes the message body into a model.ResolutionRequest and
// hands it to the next command.

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// ResolutionRequestReader decodes a JSON message into a ResolutionRequest.
type ResolutionRequestReader struct {
	cor.BaseCommand
}

// NewResolutionRequestReader is the constructor for the ResolutionRequestReader command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *ResolutionRequestReader: A pointer to the newly instantiated command.
func NewResolutionRequestReader(name string) *ResolutionRequestReader {
	return &ResolutionRequestReader{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute decodes the message held in the input parameter, either a string or
// a []byte, and stores the request under model.RequestKey and the output
// parameter.
func (c *ResolutionRequestReader) Execute(context cor.Context) {
	var raw []byte
	switch in := context.Get(c.GetInputParam()).(type) {
	case string:
		raw = []byte(in)
	case []byte:
		raw = in
	default:
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("unsupported message payload %T", in))
		return
	}

	var out model.ResolutionRequest
	if err := json.Unmarshal(raw, &out); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal resolution request: %w", err))
		return
	}
	if strings.TrimSpace(out.ExternalID) == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("%w: resolution request without id", model.ErrInvalidIdentifier))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(model.RequestKey, &out)
	context.Add(c.GetOutputParam(), &out)
}
