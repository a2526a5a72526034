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

// Package workflow assembles commands into the chains that implement the
// trailer add-on's use cases. This file implements the trailer resolution
// itself.
//
// The chain is:
//
//	trailer-availability          stop if the metadata provider has no credential
//	trailer-reference-parser      parse the identifier, pick the effective locale
//	trailer-fallback              first output wins:
//	  primary-requested-locale    metadata provider, requested locale
//	  hosting-search              hosting provider search, no locale
//	  primary-fallback-locale     metadata provider, fallback locale
//
// The found stream is left under model.StreamKey and the serving step under
// model.StepKey. Fatal conditions are recorded as context errors.
package workflow

import (
	"time"

	"github.com/jaycherian/gcp-go-streailer/internal/core/commands"
	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// Step and command names of the resolution chain.
const (
	TrailerResolutionWorkflowName = "trailer-resolution-workflow"
	AvailabilityCommandName       = "trailer-availability"
	ReferenceParserCommandName    = "trailer-reference-parser"
	FallbackChainName             = "trailer-fallback"
	StepPrimaryRequestedLocale    = "primary-requested-locale"
	StepHostingSearch             = "hosting-search"
	StepPrimaryFallbackLocale     = "primary-fallback-locale"
)

// Options is the read-only configuration of a resolution.
type Options struct {
	DefaultLocale   model.Locale  // used for absent or unsupported locales
	FallbackLocale  model.Locale  // locale of the last step
	ProviderTimeout time.Duration // bound of every single provider call
}

func (o Options) withDefaults() Options {
	if o.DefaultLocale == "" {
		o.DefaultLocale = model.DefaultLocale
	}
	if o.FallbackLocale == "" {
		o.FallbackLocale = model.DefaultFallbackLocale
	}
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = commands.DefaultProviderTimeout
	}
	return o
}

// TrailerResolutionWorkflow resolves a *model.ResolutionRequest, placed in
// cor.CtxIn, into at most one trailer stream.
type TrailerResolutionWorkflow struct {
	cor.BaseCommand
	options  Options
	metadata providers.MetadataProvider
	search   providers.SearchProvider
	chain    cor.Chain
}

// NewTrailerResolutionWorkflow is the constructor for the TrailerResolutionWorkflow.
//
// Inputs:
//   - options: Locales and timeouts; zero values take the defaults.
//   - metadata: The primary metadata provider.
//   - search: The hosting search provider; nil disables the hosting step.
//
// Returns:
//   - A pointer to a fully initialized TrailerResolutionWorkflow.
func NewTrailerResolutionWorkflow(options Options, metadata providers.MetadataProvider, search providers.SearchProvider) *TrailerResolutionWorkflow {
	out := &TrailerResolutionWorkflow{
		BaseCommand: *cor.NewBaseCommand(TrailerResolutionWorkflowName),
		options:     options.withDefaults(),
		metadata:    metadata,
		search:      search,
	}
	out.initializeChain()
	return out
}

// Options returns the effective options of the workflow.
func (w *TrailerResolutionWorkflow) Options() Options {
	return w.options
}

func (w *TrailerResolutionWorkflow) initializeChain() {
	fallback := cor.NewBaseChain(FallbackChainName).StopOnOutput(true)
	fallback.AddCommand(commands.NewPrimaryTrailerLookup(StepPrimaryRequestedLocale, w.metadata, w.options.ProviderTimeout, ""))
	fallback.AddCommand(commands.NewHostingSearch(StepHostingSearch, w.search, w.options.ProviderTimeout))
	fallback.AddCommand(commands.NewPrimaryTrailerLookup(StepPrimaryFallbackLocale, w.metadata, w.options.ProviderTimeout, w.options.FallbackLocale))

	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewProviderAvailability(AvailabilityCommandName, w.metadata))
	out.AddCommand(commands.NewReferenceParser(ReferenceParserCommandName, w.options.DefaultLocale))
	out.AddCommand(fallback)
	w.chain = out
}

// Execute runs the resolution chain.
func (w *TrailerResolutionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
