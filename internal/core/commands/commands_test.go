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

package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jaycherian/gcp-go-streailer/internal/core/commands"
	"github.com/jaycherian/gcp-go-streailer/internal/core/cor"
	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers/mocks"
	test "github.com/jaycherian/gcp-go-streailer/internal/testutil"
)

func newContext(in interface{}) cor.Context {
	chCtx := cor.NewBaseContext(context.Background())
	chCtx.Add(cor.CtxIn, in)
	return chCtx
}

func firstError(chCtx cor.Context) error {
	for _, err := range chCtx.GetErrors() {
		return err
	}
	return nil
}

func TestReferenceParser(t *testing.T) {
	parser := commands.NewReferenceParser("parser", model.DefaultLocale)
	chCtx := newContext(&model.ResolutionRequest{MediaType: "series", ExternalID: "tt7366338:4:2", Locale: "fr_fr"})

	parser.Execute(chCtx)

	require.False(t, chCtx.HasErrors())
	ref, ok := chCtx.Get(model.ReferenceKey).(*model.ContentReference)
	require.True(t, ok)
	assert.Equal(t, model.ContentReference{MediaType: model.MediaTypeSeries, ExternalID: "tt7366338", Season: 4, Episode: 2}, *ref)
	assert.Equal(t, model.Locale("fr-FR"), chCtx.Get(model.LocaleKey))
	assert.Same(t, ref, chCtx.Get(cor.CtxOut))
}

func TestReferenceParserDefaultsLocale(t *testing.T) {
	parser := commands.NewReferenceParser("parser", model.DefaultLocale)
	for _, locale := range []string{"", "xx-XX", "en-GB"} {
		chCtx := newContext(&model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: locale})
		parser.Execute(chCtx)
		assert.Equal(t, model.DefaultLocale, chCtx.Get(model.LocaleKey), locale)
	}
}

func TestReferenceParserRejectsIdentifier(t *testing.T) {
	parser := commands.NewReferenceParser("parser", model.DefaultLocale)
	for _, in := range []interface{}{
		&model.ResolutionRequest{MediaType: "movie", ExternalID: "kitsu:1234"},
		&model.ResolutionRequest{MediaType: "movie", ExternalID: ""},
		"not a request",
	} {
		chCtx := newContext(in)
		parser.Execute(chCtx)

		require.True(t, chCtx.HasErrors())
		assert.ErrorIs(t, firstError(chCtx), model.ErrInvalidIdentifier)
		assert.Nil(t, chCtx.Get(model.ReferenceKey))
	}
}

func TestProviderAvailability(t *testing.T) {
	ctrl := gomock.NewController(t)
	metadata := mocks.NewMockMetadataProvider(ctrl)
	metadata.EXPECT().HasCredentials().Return(false)
	metadata.EXPECT().HasCredentials().Return(true)
	check := commands.NewProviderAvailability("availability", metadata)
	req := &model.ResolutionRequest{ExternalID: "tt0111161"}

	unavailable := newContext(req)
	check.Execute(unavailable)
	assert.ErrorIs(t, firstError(unavailable), providers.ErrUnavailable)

	available := newContext(req)
	check.Execute(available)
	assert.False(t, available.HasErrors())
	assert.Same(t, req, available.Get(cor.CtxOut))
}

func TestResolutionRequestReader(t *testing.T) {
	reader := commands.NewResolutionRequestReader("reader")

	for _, in := range []interface{}{test.GetTestResolutionRequestMessageText(), []byte(test.GetTestResolutionRequestMessageText())} {
		chCtx := newContext(in)
		reader.Execute(chCtx)

		require.False(t, chCtx.HasErrors())
		req, ok := chCtx.Get(model.RequestKey).(*model.ResolutionRequest)
		require.True(t, ok)
		assert.Equal(t, "series", req.MediaType)
		assert.Equal(t, "tt7366338:4", req.ExternalID)
		assert.Equal(t, "it-IT", req.Locale)
	}
}

func TestResolutionRequestReaderErrors(t *testing.T) {
	reader := commands.NewResolutionRequestReader("reader")
	tests := map[string]interface{}{
		"malformed json": `{"type":`,
		"missing id":     `{"type":"movie","language":"it-IT"}`,
		"wrong payload":  42,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			chCtx := newContext(in)
			reader.Execute(chCtx)
			assert.True(t, chCtx.HasErrors())
			assert.Nil(t, chCtx.Get(model.RequestKey))
		})
	}
}

type staticResolver struct {
	got []model.ResolutionRequest
}

func (s *staticResolver) Resolve(_ context.Context, req model.ResolutionRequest) []model.TrailerStream {
	s.got = append(s.got, req)
	return []model.TrailerStream{}
}

func TestResolveRequest(t *testing.T) {
	resolver := &staticResolver{}
	command := commands.NewResolveRequest("resolve", resolver)
	chCtx := newContext(&model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161"})

	command.Execute(chCtx)

	require.Len(t, resolver.got, 1)
	assert.Equal(t, "tt0111161", resolver.got[0].ExternalID)
	assert.Equal(t, []model.TrailerStream{}, chCtx.Get(cor.CtxOut))
}

func referenceContext(ref model.ContentReference, locale model.Locale) cor.Context {
	chCtx := cor.NewBaseContext(context.Background())
	chCtx.Add(model.ReferenceKey, &ref)
	chCtx.Add(model.LocaleKey, locale)
	return chCtx
}

func TestPrimaryTrailerLookupCachesTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	metadata := mocks.NewMockMetadataProvider(ctrl)
	metadata.EXPECT().Name().Return("tmdb").AnyTimes()
	title := &model.Title{ProviderID: 278, MediaType: model.MediaTypeMovie, Name: "The Shawshank Redemption"}
	metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), model.Locale("it-IT")).Return(title, nil).Times(1)
	metadata.EXPECT().Videos(gomock.Any(), title, 0, model.Locale("it-IT")).Return(nil, nil)
	metadata.EXPECT().Videos(gomock.Any(), title, 0, model.Locale("en-US")).Return([]model.Candidate{
		{Name: "", Key: "enTrl", Site: "YouTube", Type: "Trailer", Official: true, Language: "en"},
	}, nil)

	chCtx := referenceContext(model.ContentReference{MediaType: model.MediaTypeMovie, ExternalID: "tt0111161"}, "it-IT")
	requested := commands.NewPrimaryTrailerLookup("primary", metadata, time.Second, "")
	fallback := commands.NewPrimaryTrailerLookup("fallback", metadata, time.Second, model.DefaultFallbackLocale)

	require.True(t, requested.IsExecutable(chCtx))
	requested.Execute(chCtx)
	assert.Nil(t, chCtx.Get(model.StreamKey))

	require.True(t, fallback.IsExecutable(chCtx))
	fallback.Execute(chCtx)
	stream, ok := chCtx.Get(model.StreamKey).(*model.TrailerStream)
	require.True(t, ok)
	assert.Equal(t, model.Locale("en-US"), stream.Locale)
	assert.Equal(t, "The Shawshank Redemption", stream.Title)
	assert.Equal(t, "fallback", chCtx.Get(model.StepKey))
}

func TestPrimaryTrailerLookupSkipsSameLocale(t *testing.T) {
	fallback := commands.NewPrimaryTrailerLookup("fallback", nil, time.Second, model.DefaultFallbackLocale)
	chCtx := referenceContext(model.ContentReference{MediaType: model.MediaTypeMovie, ExternalID: "tt0111161"}, "en-US")

	assert.False(t, fallback.IsExecutable(chCtx))
}

func TestPrimaryTrailerLookupErrors(t *testing.T) {
	tests := map[string]struct {
		err   error
		fatal bool
	}{
		"not found":    {err: providers.ErrNotFound},
		"transient":    {err: providers.Transient("tmdb", errors.New("connection reset"))},
		"unauthorized": {err: providers.Unauthorized("tmdb", errors.New("status 401")), fatal: true},
		"unclassified": {err: fmt.Errorf("boom")},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			metadata := mocks.NewMockMetadataProvider(ctrl)
			metadata.EXPECT().Name().Return("tmdb").AnyTimes()
			metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)

			chCtx := referenceContext(model.ContentReference{MediaType: model.MediaTypeMovie, ExternalID: "tt0111161"}, "it-IT")
			commands.NewPrimaryTrailerLookup("primary", metadata, time.Second, "").Execute(chCtx)

			assert.Equal(t, tc.fatal, chCtx.HasErrors())
			assert.Nil(t, chCtx.Get(model.StreamKey))
		})
	}
}

func TestHostingSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	search := mocks.NewMockSearchProvider(ctrl)
	search.EXPECT().Name().Return("youtube").AnyTimes()
	search.EXPECT().Search(gomock.Any(), "Chernobyl 2019 season 1 trailer").Return([]model.Candidate{
		{Name: "Chernobyl review", Key: "review01", Site: "YouTube"},
		{Name: "Chernobyl | Official Trailer | HBO", Key: "s4Trl", Site: "YouTube"},
	}, nil)

	chCtx := referenceContext(model.ContentReference{MediaType: model.MediaTypeSeries, ExternalID: "tt7366338", Season: 1}, "it-IT")
	chCtx.Add(model.TitleKey, &model.Title{MediaType: model.MediaTypeSeries, Name: "Chernobyl", Year: "2019"})
	step := commands.NewHostingSearch("hosting", search, time.Second)

	require.True(t, step.IsExecutable(chCtx))
	step.Execute(chCtx)

	stream, ok := chCtx.Get(model.StreamKey).(*model.TrailerStream)
	require.True(t, ok)
	assert.Equal(t, "s4Trl", stream.YouTubeID)
	assert.Equal(t, model.Locale(""), stream.Locale)
	assert.Equal(t, "youtube", stream.SourceProvider)
}

func TestHostingSearchErrorsNeverStopChain(t *testing.T) {
	tests := map[string]error{
		"transient":    providers.Transient("youtube", errors.New("quotaExceeded")),
		"unauthorized": providers.Unauthorized("youtube", errors.New("keyInvalid")),
	}
	for name, err := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			search := mocks.NewMockSearchProvider(ctrl)
			search.EXPECT().Name().Return("youtube").AnyTimes()
			search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, err)

			chCtx := referenceContext(model.ContentReference{MediaType: model.MediaTypeMovie, ExternalID: "tt0111161"}, "it-IT")
			chCtx.Add(model.TitleKey, &model.Title{MediaType: model.MediaTypeMovie, Name: "Le ali della libertà", Year: "1994"})
			commands.NewHostingSearch("hosting", search, time.Second).Execute(chCtx)

			assert.False(t, chCtx.HasErrors())
			assert.Nil(t, chCtx.Get(model.StreamKey))
		})
	}
}

func TestHostingSearchDisabled(t *testing.T) {
	step := commands.NewHostingSearch("hosting", nil, time.Second)
	chCtx := referenceContext(model.ContentReference{MediaType: model.MediaTypeMovie, ExternalID: "tt0111161"}, "it-IT")

	assert.False(t, step.IsExecutable(chCtx))
}
