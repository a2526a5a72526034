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

package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/jaycherian/gcp-go-streailer/internal/app"
	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
)

var state *app.StateManager

// SetupOS points the config loader at the configs directory unless the
// environment already does.
func SetupOS() (err error) {
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		err = os.Setenv(cloud.EnvConfigRuntime, cloud.DefaultRuntime)
	}
	return err
}

func GetConfig() *cloud.Config {
	if err := SetupOS(); err != nil {
		log.Fatalf("failed to setup env: %v\n", err)
	}
	config, err := cloud.Load(afero.NewOsFs())
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	return config
}

// InitState builds the global state and starts the Pub/Sub listeners. The
// returned channels close once each listener has stopped receiving.
func InitState(ctx context.Context, config *cloud.Config) []<-chan struct{} {
	var err error
	state, err = app.InitState(ctx, config, true)
	if err != nil {
		log.Fatalf("failed to initialize state: %v\n", err)
	}
	return state.SetupListeners(ctx)
}
