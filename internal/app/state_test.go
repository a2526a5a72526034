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

package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-streailer/internal/app"
	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	test "github.com/jaycherian/gcp-go-streailer/internal/testutil"
)

func TestNewProvidersWithoutHostingSearch(t *testing.T) {
	config := cloud.NewConfig()
	config.YouTube.Disabled = true

	metadata, search, err := app.NewProviders(context.Background(), config)

	require.NoError(t, err)
	assert.Equal(t, "tmdb", metadata.Name())
	assert.False(t, metadata.HasCredentials())
	assert.Nil(t, search)
}

func TestInitStateWithoutCloud(t *testing.T) {
	config := test.GetConfig()

	state, err := app.InitState(context.Background(), config, false)
	require.NoError(t, err)
	defer state.Close()

	assert.Nil(t, state.Cloud)
	assert.Empty(t, state.SetupListeners(context.Background()))
	assert.Equal(t, model.DefaultLocale, state.DefaultLocale())

	options := state.RouterOptions()
	assert.Equal(t, "streailer-test", options.ServiceName)
	assert.Equal(t, "org.streailer.trailer", options.Manifest.ID)
	assert.Same(t, state.Stats, options.Stats)
}

func TestInitStateCloudRequiresProject(t *testing.T) {
	config := cloud.NewConfig()
	config.Audit.PubSubTopic = "resolutions"

	_, err := app.InitState(context.Background(), config, true)

	assert.Error(t, err)
}

func TestWaitForListeners(t *testing.T) {
	done := make(chan struct{})
	close(done)
	running := make(chan struct{})

	assert.NoError(t, app.WaitForListeners(context.Background(), nil))
	assert.NoError(t, app.WaitForListeners(context.Background(), []<-chan struct{}{done, done}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := app.WaitForListeners(ctx, []<-chan struct{}{done, running})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(running)
	}()
	assert.NoError(t, app.WaitForListeners(context.Background(), []<-chan struct{}{running}))
}
