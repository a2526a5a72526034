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

package youtube

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
)

// Data API error reasons that mean the key itself is rejected.
var credentialReasons = map[string]bool{
	"keyInvalid":          true,
	"keyExpired":          true,
	"forbidden":           true,
	"accessNotConfigured": true,
	"ipRefererBlocked":    true,
}

func (c *Client) searchDataAPI(ctx context.Context, query string) ([]model.Candidate, error) {
	if err := c.http.Wait(ctx); err != nil {
		return nil, providers.Transient(ProviderName, err)
	}
	resp, err := c.api.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(c.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError(err)
	}

	out := make([]model.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		out = append(out, model.Candidate{
			Name:    html.UnescapeString(item.Snippet.Title),
			Key:     item.Id.VideoId,
			Site:    model.SiteYouTube,
			Channel: item.Snippet.ChannelTitle,
		})
	}
	return out, nil
}

// classifyAPIError maps a Data API failure. Quota exhaustion is transient;
// an invalid, expired or blocked key is a credential rejection.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return providers.Transient(ProviderName, err)
	}
	if apiErr.Code == http.StatusUnauthorized || strings.Contains(apiErr.Message, "API key not valid") {
		return providers.Unauthorized(ProviderName, err)
	}
	for _, item := range apiErr.Errors {
		if credentialReasons[item.Reason] {
			return providers.Unauthorized(ProviderName, err)
		}
	}
	return providers.Transient(ProviderName, err)
}
