package aggregate

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/core/fetch"
	"jobradar/internal/core/source"
	"jobradar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher maps URL substrings to canned outcomes.
type fakeFetcher struct {
	pages map[string]*model.FetchOutcome
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ fetch.Options) (*model.FetchOutcome, error) {
	for key, out := range f.pages {
		if strings.Contains(url, key) {
			return out, nil
		}
	}
	return &model.FetchOutcome{Status: model.OutcomeFailed, Tier: model.TierStatic}, nil
}

func internshalaCard(n int) string {
	return fmt.Sprintf(`<div class="individual_internship">
		<h3 class="job-internship-name"><a href="/internship/detail/job-%d">SDE Intern %d</a></h3>
		<p class="company-name">Company %d</p>
		<div class="status-success"><span>2 days ago</span></div>
	</div>`, n, n, n)
}

// listing page with five unique cards plus two repeats of the first
func internshalaListing() string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 1; i <= 5; i++ {
		b.WriteString(internshalaCard(i))
	}
	b.WriteString(internshalaCard(1))
	b.WriteString(internshalaCard(1))
	b.WriteString("</body></html>")
	return b.String()
}

func testSources(t *testing.T) map[string]config.SourceConfig {
	t.Helper()
	sources := map[string]config.SourceConfig{}
	for _, name := range source.NewRegistry().Names() {
		sources[name] = config.SourceConfig{Enabled: false}
	}
	sources["internshala"] = config.SourceConfig{Enabled: true, SearchQuery: "sde", MaxPages: 1, MaxRetries: 1}
	sources["timesjobs"] = config.SourceConfig{Enabled: true, SearchQuery: "sde", MaxPages: 1, MaxRetries: 1}
	return sources
}

func testService(t *testing.T, fetcher PageFetcher, sources map[string]config.SourceConfig) *Service {
	t.Helper()
	cfg := config.Config{Workers: 2, FreshnessDays: 7}
	s := NewService(cfg, sources, source.NewRegistry(), fetcher, NewMonitor())
	s.newSession = func(int) (*fetch.Session, error) { return nil, nil }
	s.sleep = func(context.Context, time.Duration) error { return nil }
	return s
}

func TestRunPublishesDespiteSourceFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.FetchOutcome{
		"internshala.com": {Status: model.OutcomeSuccess, HTML: internshalaListing(), Tier: model.TierStatic},
		"timesjobs.com":   {Status: model.OutcomeBlocked, Tier: model.TierStatic},
	}}
	s := testService(t, fetcher, testSources(t))

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.CycleID)

	// five unique records survive, two dupes removed
	assert.Len(t, res.Records, 5)
	assert.Equal(t, 2, res.Duplicates)

	in := res.SourceStats["internshala"]
	assert.True(t, in.Attempted)
	assert.True(t, in.Succeeded)
	assert.Equal(t, 7, in.JobsFound)

	tj := res.SourceStats["timesjobs"]
	assert.True(t, tj.Attempted)
	assert.False(t, tj.Succeeded)
	assert.NotEmpty(t, tj.LastError)

	// failed source shows up in the monitor too
	snap := s.Monitor().Snapshot()
	assert.Equal(t, 1, snap["timesjobs"].Failures)

	assert.Equal(t, StateIdle, s.State())
}

func TestRunRecordsAreNormalized(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.FetchOutcome{
		"internshala.com": {Status: model.OutcomeSuccess, HTML: internshalaListing(), Tier: model.TierStatic},
	}}
	sources := testSources(t)
	sources["timesjobs"] = config.SourceConfig{Enabled: false}
	s := testService(t, fetcher, sources)

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	for _, rec := range res.Records {
		assert.False(t, rec.PostedAt.IsZero())
		assert.NotEqual(t, model.TypeUnknown, rec.JobType)
		assert.True(t, rec.Complete())
	}
}

func TestRunAllSourcesFailingPublishesEmptyGeneration(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*model.FetchOutcome{}}
	s := testService(t, fetcher, testSources(t))

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.False(t, res.SourceStats["internshala"].Succeeded)
	assert.False(t, res.SourceStats["timesjobs"].Succeeded)
}

func TestFilterFreshDropsStaleRecords(t *testing.T) {
	s := testService(t, &fakeFetcher{}, testSources(t))
	now := time.Now()

	records := []model.JobRecord{
		{Title: "fresh", Source: "internshala", PostedAt: now.AddDate(0, 0, -2)},
		{Title: "stale", Source: "internshala", PostedAt: now.AddDate(0, 0, -31)},
	}
	kept := s.filterFresh(records, now)
	require.Len(t, kept, 1)
	assert.Equal(t, "fresh", kept[0].Title)
}

func TestFilterFreshSourceOverride(t *testing.T) {
	sources := testSources(t)
	sc := sources["internshala"]
	sc.DateFilterDays = 1
	sources["internshala"] = sc
	s := testService(t, &fakeFetcher{}, sources)
	now := time.Now()

	records := []model.JobRecord{
		{Title: "two days old", Source: "internshala", PostedAt: now.AddDate(0, 0, -2)},
	}
	assert.Empty(t, s.filterFresh(records, now))
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := testService(t, &fakeFetcher{}, testSources(t))
	_, err := s.Run(ctx)
	assert.Error(t, err)

	// a source aborted mid-cycle never counts as a cumulative success
	for name, health := range s.Monitor().Snapshot() {
		assert.Zero(t, health.Successes, "source %s", name)
	}
}

func TestRunQualityRatioCountsRejectedCards(t *testing.T) {
	// two complete cards plus three missing a company
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(internshalaCard(1))
	b.WriteString(internshalaCard(2))
	for i := 0; i < 3; i++ {
		b.WriteString(`<div class="individual_internship">
			<h3 class="job-internship-name"><a href="/internship/detail/orphan">Orphan</a></h3>
		</div>`)
	}
	b.WriteString("</body></html>")

	fetcher := &fakeFetcher{pages: map[string]*model.FetchOutcome{
		"internshala.com": {Status: model.OutcomeSuccess, HTML: b.String(), Tier: model.TierStatic},
	}}
	sources := testSources(t)
	sources["timesjobs"] = config.SourceConfig{Enabled: false}
	s := testService(t, fetcher, sources)

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	health := s.Monitor().Snapshot()["internshala"]
	assert.Equal(t, 2, health.JobsFound)
	assert.InDelta(t, 0.4, health.QualityRatio, 1e-9)
}
