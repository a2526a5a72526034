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

// Package commands provides the concrete Command implementations the trailer
// resolution workflows are built from.
//
// This file defines the first command of a resolution. It turns the raw
// request into a validated ContentReference and the effective locale, and is
// the only place identifier and locale rules are applied.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

// ReferenceParser parses a *model.ResolutionRequest into a
// *model.ContentReference and the effective model.Locale.
type ReferenceParser struct {
	cor.BaseCommand
	defaultLocale model.Locale
}

// NewReferenceParser is the constructor for the ReferenceParser command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - defaultLocale: The locale used when the request has none, or an
//     unsupported one.
//
// Outputs:
//   - *ReferenceParser: A pointer to the newly instantiated command.
func NewReferenceParser(name string, defaultLocale model.Locale) *ReferenceParser {
	return &ReferenceParser{BaseCommand: *cor.NewBaseCommand(name), defaultLocale: defaultLocale}
}

// Execute reads the request from the input parameter. On success the
// reference is stored under model.ReferenceKey and the output parameter, and
// the locale under model.LocaleKey. A malformed identifier is recorded as an
// error wrapping model.ErrInvalidIdentifier, which stops the workflow before
// any provider is contacted.
func (c *ReferenceParser) Execute(context cor.Context) {
	req, ok := context.Get(c.GetInputParam()).(*model.ResolutionRequest)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("%w: missing resolution request", model.ErrInvalidIdentifier))
		return
	}

	ref, err := model.ParseContentID(req.MediaType, req.ExternalID, req.Season)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)

	context.Add(model.LocaleKey, model.NormalizeLocale(req.Locale, c.defaultLocale))
	context.Add(model.ReferenceKey, &ref)
	context.Add(c.GetOutputParam(), &ref)
}
