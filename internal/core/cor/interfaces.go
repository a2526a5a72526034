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

// Package cor (Chain of Responsibility) provides the building blocks the
// trailer resolution is assembled from: commands, chains of commands, and the
// shared context they read from and write to.
//
// Two chain flavours are supported. A pipeline runs every command in order and
// pipes each command's output into the next one's input. A fallback chain
// (StopOnOutput) runs its commands in order until the first one produces an
// output, which is how "try provider A, then B, then A again" is expressed.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used to pipe data between the commands of a
// chain.
const (
	// CtxIn holds the primary input of a command. A chain fills it with the
	// output of the previous command.
	CtxIn = "__IN__"
	// CtxOut is where a command leaves its primary output.
	CtxOut = "__OUT__"
)

// Context is the state shared by every command of one workflow execution.
// It is not safe for concurrent use; each execution owns its own Context.
type Context interface {
	// SetContext replaces the Go context (cancellation, deadlines, spans).
	SetContext(context context.Context)

	// GetContext returns the current Go context.
	GetContext() context.Context

	// Add stores a value under key.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// AddError records a fatal error, keyed by the command that raised it.
	// A pipeline stops at the first recorded error.
	AddError(key string, err error)

	// GetErrors returns every recorded error.
	GetErrors() map[string]error

	// HasErrors reports whether any error was recorded.
	HasErrors() bool
}

// Executable is anything that runs against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one unit of work in a chain.
type Command interface {
	Executable

	// GetName returns the command name used for spans and metrics.
	GetName() string

	// GetInputParam returns the context key the command reads its input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its output to.
	GetOutputParam() string

	// IsExecutable reports whether the command should run against the
	// current context. A command that is not executable is skipped.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered list of commands and is itself a Command, so chains
// nest.
type Chain interface {
	Command

	// ContinueOnFailure keeps the chain running after a command records an
	// error.
	ContinueOnFailure(bool) Chain

	// StopOnOutput ends the chain as soon as a command produces an output.
	StopOnOutput(bool) Chain

	// AddCommand appends a command.
	AddCommand(command Command) Chain
}
