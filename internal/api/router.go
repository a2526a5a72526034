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

package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-streailer/internal/core/commands"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/services"
)

// RouterOptions carries everything the HTTP surface depends on.
type RouterOptions struct {
	ServiceName   string
	Manifest      Manifest
	Resolver      commands.Resolver
	Stats         *services.Stats
	DefaultLocale model.Locale
}

// NewRouter builds the gin engine with tracing and permissive CORS, which the
// host application requires to fetch the manifest from any origin.
func NewRouter(options RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(options.ServiceName))
	r.Use(cors.Default())

	Health(r, options.ServiceName)
	apiV1 := r.Group("/api/v1")
	{
		Dashboard(apiV1, options.Stats)
	}
	AddonRouter(r, options.Manifest, options.Resolver, options.DefaultLocale)
	return r
}
