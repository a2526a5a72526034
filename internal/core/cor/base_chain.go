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

// This file defines `BaseChain`, the default Chain.
//
// Logic Flow:
//  1. A span is opened for the chain and a child span for every command.
//  2. Before each command the chain stops if an error was recorded, unless
//     ContinueOnFailure was set.
//  3. Commands whose IsExecutable is false are skipped; the skip is recorded
//     as a span event, not as an error.
//  4. After each command its CtxOut value is moved to CtxIn, so the output of
//     one command is the input of the next.
//  5. With StopOnOutput set, the chain ends after the first command that left
//     a value in CtxOut. The value stays available in CtxIn.

package cor

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BaseChain runs its commands sequentially against one Context.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	stopOnOutput      bool
	commands          []Command
}

// NewBaseChain creates an empty chain named name.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

// ContinueOnFailure controls whether a recorded error stops the chain.
func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

// StopOnOutput turns the chain into a fallback chain: the first command that
// produces an output ends it.
func (c *BaseChain) StopOnOutput(stopOnOutput bool) Chain {
	c.stopOnOutput = stopOnOutput
	return c
}

// AddCommand appends command to the chain.
func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable only requires a Go context; a chain's commands check their own
// inputs.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

// Execute runs the commands in order.
//
// Inputs:
//   - chCtx: The shared context of the workflow execution.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()

	// Restore the caller's Go context so a nested chain does not leak its span.
	defer chCtx.SetContext(parentCtx)

	for _, command := range c.commands {
		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())

		if chCtx.HasErrors() && !c.continueOnFailure {
			commandSpan.SetStatus(codes.Error, "previous error on chain; skipping execution")
			commandSpan.End()
			break
		}

		if !command.IsExecutable(chCtx) {
			commandSpan.AddEvent("skipped", withCommand(command))
			commandSpan.End()
			continue
		}

		chCtx.SetContext(commandContext)
		command.Execute(chCtx)
		chCtx.SetContext(outerCtx)

		if chCtx.HasErrors() {
			commandSpan.SetStatus(codes.Error, "error during or after command execution")
		} else {
			commandSpan.SetStatus(codes.Ok, "command completed successfully")
		}
		commandSpan.End()

		outputValue := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if outputValue != nil {
			chCtx.Add(CtxIn, outputValue)
		}
		chCtx.Remove(CtxOut)

		if c.stopOnOutput && outputValue != nil {
			chainSpan.AddEvent("output produced", withCommand(command))
			break
		}
	}

	if !chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
	} else {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	}
}

func withCommand(command Command) trace.EventOption {
	return trace.WithAttributes(attribute.String("command", command.GetName()))
}
