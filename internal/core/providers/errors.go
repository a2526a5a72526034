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

package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the primary provider has no credential configured.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrUnauthorized means a provider rejected the configured credential.
	// It short-circuits every remaining step.
	ErrUnauthorized = errors.New("provider rejected credentials")
	// ErrTransient covers network failures, timeouts, rate limiting and
	// malformed payloads. The step yields nothing and the chain moves on.
	ErrTransient = errors.New("transient provider error")
	// ErrNotFound means the provider answered but has nothing usable.
	ErrNotFound = errors.New("not found")
)

// Transient wraps err as a transient provider failure.
func Transient(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrTransient, err)
}

// Unauthorized wraps err as a credential rejection.
func Unauthorized(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrUnauthorized, err)
}

// IsFatal reports whether err must stop the whole fallback chain.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrUnavailable)
}

// Classify maps an arbitrary provider error onto the taxonomy. Errors already
// carrying a category are returned unchanged; everything else, deadlines and
// network failures included, is transient.
func Classify(provider string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTransient),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return err
	}
	return Transient(provider, err)
}
