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

// Package services_test exercises the TrailerService against mocked
// providers. Unexpected provider calls fail the test, which is how the
// "later steps are never invoked" properties are asserted.
package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jaycherian/gcp-go-streailer/internal/core/model"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers"
	"github.com/jaycherian/gcp-go-streailer/internal/core/providers/mocks"
	"github.com/jaycherian/gcp-go-streailer/internal/core/services"
	"github.com/jaycherian/gcp-go-streailer/internal/core/workflow"
)

type captureRecorder struct {
	mu      sync.Mutex
	records []*model.Resolution
}

func (c *captureRecorder) Record(_ context.Context, r *model.Resolution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

func (c *captureRecorder) last(t *testing.T) *model.Resolution {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.records)
	return c.records[len(c.records)-1]
}

type fixture struct {
	metadata *mocks.MockMetadataProvider
	search   *mocks.MockSearchProvider
	recorder *captureRecorder
	service  *services.TrailerService
}

func newFixture(t *testing.T, credentials bool, options workflow.Options) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		metadata: mocks.NewMockMetadataProvider(ctrl),
		search:   mocks.NewMockSearchProvider(ctrl),
		recorder: &captureRecorder{},
	}
	f.metadata.EXPECT().Name().Return("tmdb").AnyTimes()
	f.metadata.EXPECT().HasCredentials().Return(credentials).AnyTimes()
	f.search.EXPECT().Name().Return("youtube").AnyTimes()
	f.service = services.NewTrailerService(options, f.metadata, f.search, f.recorder)
	return f
}

var (
	shawshank = &model.Title{ProviderID: 278, MediaType: model.MediaTypeMovie, Name: "The Shawshank Redemption", Year: "1994"}
	chernobyl = &model.Title{ProviderID: 87108, MediaType: model.MediaTypeSeries, Name: "Chernobyl"}
)

func movieRef(id string) model.ContentReference {
	return model.ContentReference{MediaType: model.MediaTypeMovie, ExternalID: id}
}

func trailer(key, lang string) model.Candidate {
	return model.Candidate{Name: "Official Trailer " + key, Key: key, Site: model.SiteYouTube, Type: model.VideoTypeTrailer, Official: true, Language: lang}
}

func TestResolveStepOneHitSkipsLaterSteps(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), movieRef("tt0111161"), model.Locale("fr-FR")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("fr-FR")).Return([]model.Candidate{trailer("fr1", "fr")}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "fr-FR"})

	require.Len(t, out, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=fr1", out[0].URL)
	assert.Equal(t, model.Locale("fr-FR"), out[0].Locale)
	assert.Equal(t, "tmdb", out[0].SourceProvider)

	rec := f.recorder.last(t)
	assert.Equal(t, model.OutcomeFound, rec.Outcome)
	assert.Equal(t, workflow.StepPrimaryRequestedLocale, rec.Step)
}

func TestResolveHostingHitSkipsFallbackLocale(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), movieRef("tt0111161"), model.Locale("de-DE")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("de-DE")).Return(nil, nil).Times(1)
	f.search.EXPECT().Search(gomock.Any(), "The Shawshank Redemption 1994 trailer").Return([]model.Candidate{
		{Name: "The Shawshank Redemption - Trailer", Key: "yt1", Site: model.SiteYouTube},
	}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "de-DE"})

	require.Len(t, out, 1)
	assert.Equal(t, "youtube", out[0].SourceProvider)
	assert.Equal(t, "yt1", out[0].YouTubeID)
	assert.Empty(t, out[0].Locale)
	assert.Equal(t, workflow.StepHostingSearch, f.recorder.last(t).Step)
}

func TestResolveAllStepsEmpty(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), movieRef("tt0111161"), model.Locale("it-IT")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("it-IT")).Return(nil, nil).Times(1)
	f.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("en-US")).Return([]model.Candidate{
		{Name: "Behind the scenes", Key: "bts", Site: model.SiteYouTube, Type: "Featurette", Language: "en"},
	}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "it-IT"})

	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, model.OutcomeNotFound, f.recorder.last(t).Outcome)
}

func TestResolveFallbackLocaleServesLast(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), movieRef("tt0111161"), model.Locale("tr-TR")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("tr-TR")).Return(nil, nil).Times(1)
	f.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("en-US")).Return([]model.Candidate{trailer("en1", "en")}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "tr-TR"})

	require.Len(t, out, 1)
	assert.Equal(t, model.Locale("en-US"), out[0].Locale)
	assert.Equal(t, workflow.StepPrimaryFallbackLocale, f.recorder.last(t).Step)
}

func TestResolveWithoutCredentialMakesNoCalls(t *testing.T) {
	f := newFixture(t, false, workflow.Options{})

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "it-IT"})
	out2 := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0068646"})

	assert.Empty(t, out)
	assert.Empty(t, out2)
	assert.Equal(t, model.OutcomeProviderUnavailable, f.recorder.last(t).Outcome)
}

func TestResolveInvalidIdentifierMakesNoCalls(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "kitsu:1234"})

	assert.Empty(t, out)
	assert.Equal(t, model.OutcomeInvalidIdentifier, f.recorder.last(t).Outcome)
}

func TestResolveAuthErrorShortCircuits(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, providers.Unauthorized("tmdb", errors.New("status 401"))).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "es-ES"})

	assert.Empty(t, out)
	assert.Equal(t, model.OutcomeAuthRejected, f.recorder.last(t).Outcome)
}

func TestResolveRejectedSearchKeyStillTriesFallbackLocale(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), movieRef("tt0111161"), model.Locale("pt-BR")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("pt-BR")).Return(nil, nil).Times(1)
	f.search.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, providers.Unauthorized("youtube", errors.New("keyInvalid"))).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("en-US")).Return([]model.Candidate{trailer("en1", "en")}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "pt-BR"})

	require.Len(t, out, 1)
	assert.Equal(t, "en1", out[0].YouTubeID)
	rec := f.recorder.last(t)
	assert.Equal(t, model.OutcomeFound, rec.Outcome)
	assert.Equal(t, workflow.StepPrimaryFallbackLocale, rec.Step)
}

func TestResolveTransientErrorContinuesChain(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), model.Locale("es-MX")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("es-MX")).
		Return(nil, providers.Transient("tmdb", errors.New("status 503"))).Times(1)
	f.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]model.Candidate{
		{Name: "Sueño de fuga - Tráiler", Key: "yt2", Site: model.SiteYouTube},
	}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "es-MX"})

	require.Len(t, out, 1)
	assert.Equal(t, "youtube", out[0].SourceProvider)
}

func TestResolveTitleMissStillSearchesById(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, providers.ErrNotFound).Times(1)
	f.search.EXPECT().Search(gomock.Any(), "tt9999999 trailer").Return(nil, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt9999999", Locale: "pt-BR"})

	assert.Empty(t, out)
	assert.Equal(t, model.OutcomeNotFound, f.recorder.last(t).Outcome)
}

func TestResolveTimeoutIsNoResult(t *testing.T) {
	f := newFixture(t, true, workflow.Options{ProviderTimeout: 20 * time.Millisecond})
	f.metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), gomock.Any()).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("ru-RU")).
		DoAndReturn(func(ctx context.Context, _ *model.Title, _ int, _ model.Locale) ([]model.Candidate, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Times(1)
	f.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]model.Candidate{
		{Name: "Побег из Шоушенка — трейлер", Key: "yt3", Site: model.SiteYouTube},
	}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "ru-RU"})

	require.Len(t, out, 1)
	assert.Equal(t, "yt3", out[0].YouTubeID)
}

func TestResolveSkipsFallbackWhenLocaleMatches(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), model.Locale("en-US")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("en-US")).Return(nil, nil).Times(1)
	f.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "en-US"})

	assert.Empty(t, out)
}

func TestResolveUnsupportedLocaleBehavesAsAbsent(t *testing.T) {
	for _, locale := range []string{"", "xx-XX", "en-GB"} {
		t.Run("locale="+locale, func(t *testing.T) {
			f := newFixture(t, true, workflow.Options{})
			f.metadata.EXPECT().FindTitle(gomock.Any(), movieRef("tt0111161"), model.Locale("it-IT")).Return(shawshank, nil).Times(1)
			f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("it-IT")).Return([]model.Candidate{trailer("it1", "it")}, nil).Times(1)

			out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: locale})

			require.Len(t, out, 1)
			assert.Equal(t, model.Locale("it-IT"), out[0].Locale)
			assert.Equal(t, "it-IT", f.recorder.last(t).EffectiveLocale)
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), gomock.Any(), gomock.Any()).Return(shawshank, nil).Times(2)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("hi-IN")).Return([]model.Candidate{
		trailer("hi2", "hi"),
		{Name: "Teaser", Key: "hi1", Site: model.SiteYouTube, Type: model.VideoTypeTeaser, Official: true, Language: "hi"},
		trailer("hi3", "hi"),
	}, nil).Times(2)

	req := model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "hi-IN"}
	first := f.service.Resolve(context.Background(), req)
	second := f.service.Resolve(context.Background(), req)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, "hi2", first[0].YouTubeID)
}

func TestResolveSeriesSeasonScenario(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	ref := model.ContentReference{MediaType: model.MediaTypeSeries, ExternalID: "tt7366338", Season: 4}
	f.metadata.EXPECT().FindTitle(gomock.Any(), ref, model.Locale("it-IT")).Return(chernobyl, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), chernobyl, 4, model.Locale("it-IT")).Return([]model.Candidate{
		{Name: "Stagione 4 - Trailer ufficiale", Key: "s4it", Site: model.SiteYouTube, Type: model.VideoTypeTrailer, Official: true, Language: "it", Region: "IT"},
	}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "series", ExternalID: "tt7366338:4", Locale: "it-IT"})

	require.Len(t, out, 1)
	assert.Equal(t, model.Locale("it-IT"), out[0].Locale)
	assert.Equal(t, "Stagione 4 - Trailer ufficiale", out[0].Title)
	assert.Equal(t, 4, f.recorder.last(t).Season)
}

func TestResolveHostingScenarioForJapanese(t *testing.T) {
	f := newFixture(t, true, workflow.Options{})
	f.metadata.EXPECT().FindTitle(gomock.Any(), movieRef("tt0111161"), model.Locale("ja-JP")).Return(shawshank, nil).Times(1)
	f.metadata.EXPECT().Videos(gomock.Any(), shawshank, 0, model.Locale("ja-JP")).Return([]model.Candidate{trailer("en1", "en")}, nil).Times(1)
	f.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]model.Candidate{
		{Name: "ショーシャンクの空に 予告編", Key: "ja1", Site: model.SiteYouTube},
	}, nil).Times(1)

	out := f.service.Resolve(context.Background(), model.ResolutionRequest{MediaType: "movie", ExternalID: "tt0111161", Locale: "ja-JP"})

	require.Len(t, out, 1)
	assert.Equal(t, "youtube", out[0].SourceProvider)
	assert.Empty(t, out[0].Locale)
}

func TestStatsRecordsOutcomes(t *testing.T) {
	stats := services.NewStats()
	stats.Record(context.Background(), &model.Resolution{Outcome: model.OutcomeFound, Step: workflow.StepHostingSearch, EffectiveLocale: "it-IT", CreateDate: time.Now()})
	stats.Record(context.Background(), &model.Resolution{Outcome: model.OutcomeNotFound, EffectiveLocale: "it-IT", CreateDate: time.Now()})

	snap := stats.Snapshot()
	assert.Equal(t, int64(2), snap.Total)
	assert.Equal(t, int64(1), snap.Outcomes["found"])
	assert.Equal(t, int64(1), snap.Outcomes["not_found"])
	assert.Equal(t, int64(0), snap.Outcomes["auth_rejected"])
	assert.Equal(t, int64(1), snap.ServingSteps[workflow.StepHostingSearch])
	assert.Equal(t, int64(2), snap.Locales["it-IT"])
	assert.NotNil(t, snap.LastResolution)
}
