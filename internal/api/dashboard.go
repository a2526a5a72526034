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

// This file defines the operator endpoints: resolution statistics and the
// liveness probe.

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-streailer/internal/core/services"
)

// Dashboard registers the statistics group under the given API group, e.g.
// `/api/v1/stats`.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the "/stats" group is added.
//   - stats: The in-process outcome counters.
func Dashboard(r *gin.RouterGroup, stats *services.Stats) {
	group := r.Group("/stats")
	{
		group.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, stats.Snapshot())
		})
	}
}

// Health registers the liveness probe.
func Health(r gin.IRoutes, name string) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "name": name})
	})
}
