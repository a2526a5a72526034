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
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-streailer/internal/core/commands"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
)

const jsonSuffix = ".json"

// StreamItem is one entry of the stream resource response. Exactly one of
// YouTubeID and URL is set.
type StreamItem struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	YouTubeID string `json:"ytId,omitempty"`
	URL       string `json:"url,omitempty"`
}

// StreamResponse is the body of the stream resource.
type StreamResponse struct {
	Streams []StreamItem `json:"streams"`
}

// addonConfig is the user configuration carried in the first path segment.
type addonConfig struct {
	Language string `json:"language"`
}

// ParseAddonConfig extracts the trailer locale from the config path segment.
// The segment is either URL-encoded JSON such as `{"language":"fr-FR"}` or a
// bare locale. Anything unusable resolves to def.
func ParseAddonConfig(raw string, def model.Locale) model.Locale {
	raw = strings.TrimSpace(raw)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	if raw == "" {
		return def
	}
	if strings.HasPrefix(raw, "{") {
		var cfg addonConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return def
		}
		return model.NormalizeLocale(cfg.Language, def)
	}
	return model.NormalizeLocale(raw, def)
}

// NewStreamItem converts a resolved trailer into a stream entry.
func NewStreamItem(addonName string, stream model.TrailerStream) StreamItem {
	out := StreamItem{Name: addonName, Title: streamTitle(stream)}
	if stream.YouTubeID != "" {
		out.YouTubeID = stream.YouTubeID
	} else {
		out.URL = stream.URL
	}
	return out
}

func streamTitle(stream model.TrailerStream) string {
	title := stream.Title
	if title == "" {
		title = "Trailer"
	}
	if stream.Locale != "" {
		return fmt.Sprintf("%s\n%s", title, stream.Locale)
	}
	return title
}

// AddonRouter registers the manifest and stream resources, with and without
// the leading config segment.
//
// Inputs:
//   - r: The router the routes are attached to.
//   - manifest: The descriptor served on the manifest routes.
//   - resolver: The trailer resolver behind the stream resource.
//   - defaultLocale: Locale used when the request carries no usable config.
func AddonRouter(r gin.IRoutes, manifest Manifest, resolver commands.Resolver, defaultLocale model.Locale) {
	serveManifest := func(c *gin.Context) {
		c.JSON(http.StatusOK, manifest)
	}
	r.GET("/manifest.json", serveManifest)
	r.GET("/:config/manifest.json", serveManifest)

	streams := func(c *gin.Context) {
		locale := ParseAddonConfig(c.Param("config"), defaultLocale)
		req := model.ResolutionRequest{
			MediaType:  c.Param("type"),
			ExternalID: strings.TrimSuffix(c.Param("id"), jsonSuffix),
			Locale:     string(locale),
		}
		slog.DebugContext(c.Request.Context(), "stream request", "type", req.MediaType, "id", req.ExternalID, "locale", req.Locale)

		out := StreamResponse{Streams: make([]StreamItem, 0, 1)}
		for _, s := range resolver.Resolve(c.Request.Context(), req) {
			out.Streams = append(out.Streams, NewStreamItem(manifest.Name, s))
		}
		c.JSON(http.StatusOK, out)
	}
	r.GET("/stream/:type/:id", streams)
	r.GET("/:config/stream/:type/:id", streams)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/manifest.json")
	})
}
