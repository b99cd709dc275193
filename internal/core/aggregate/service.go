// Package aggregate orchestrates one scrape cycle: fan the enabled sources
// out over a worker pool, run each record through the
// normalize/classify/enrich pipeline, filter by freshness, dedup, and hand
// back a complete generation for atomic publication.
package aggregate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/core/classify"
	"jobradar/internal/core/dedup"
	"jobradar/internal/core/enrich"
	"jobradar/internal/core/fetch"
	"jobradar/internal/core/normalize"
	"jobradar/internal/core/source"
	"jobradar/internal/logger"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// State is the externally visible phase of the current cycle.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateNormalizing State = "normalizing"
	StateFiltering   State = "filtering"
	StateDeduping    State = "deduping"
	StateReady       State = "ready"
)

const (
	retryBaseDelay = 2 * time.Second
	// consecutive rendered-tier failures before the worker restarts its
	// browser session
	sessionFailLimit = 2
	// deep-scrape detail fetches per source per cycle
	deepScrapeLimit = 10
)

// PageFetcher is what the orchestrator needs from the fetch layer.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, opts fetch.Options) (*model.FetchOutcome, error)
}

// SessionFactory creates one browser session per worker. It may return
// (nil, nil) when the rendered tier is unavailable; workers then run
// static-only.
type SessionFactory func(workerID int) (*fetch.Session, error)

// Service runs scrape cycles. One cycle at a time; concurrent Run calls are
// serialized by the caller (the scheduler's single-flight guard).
type Service struct {
	log      *logger.Logger
	cfg      config.Config
	sources  map[string]config.SourceConfig
	registry *source.Registry
	fetcher  PageFetcher
	monitor  *Monitor

	newSession SessionFactory
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time

	mu    sync.Mutex
	state State
}

func NewService(cfg config.Config, sources map[string]config.SourceConfig, registry *source.Registry, fetcher PageFetcher, monitor *Monitor) *Service {
	return &Service{
		log:        logger.New("AggregateService"),
		cfg:        cfg,
		sources:    sources,
		registry:   registry,
		fetcher:    fetcher,
		monitor:    monitor,
		newSession: func(id int) (*fetch.Session, error) { return fetch.NewSession(id) },
		sleep:      sleepCtx,
		now:        time.Now,
		state:      StateIdle,
	}
}

// State returns the current cycle phase.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Monitor exposes the per-source health view.
func (s *Service) Monitor() *Monitor { return s.monitor }

type sourceResult struct {
	name      string
	records   []model.JobRecord
	inspected int
	stats     model.SourceCycleStats
}

// Run executes one full cycle. A cycle always completes: failed sources are
// recorded in SourceStats and the remaining sources still publish. Only
// context cancellation aborts the cycle.
func (s *Service) Run(ctx context.Context) (*model.ScrapeCycleResult, error) {
	started := s.now()
	result := &model.ScrapeCycleResult{
		CycleID:     uuid.NewString(),
		SourceStats: map[string]model.SourceCycleStats{},
		StartedAt:   started,
	}
	defer s.setState(StateIdle)

	names := s.enabledSources()
	s.log.Info().Str("cycle_id", result.CycleID).Strs("sources", names).Msg("cycle started")

	s.setState(StateFetching)
	results := s.fetchAll(ctx, names)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []model.JobRecord
	for _, r := range results {
		result.SourceStats[r.name] = r.stats
		records = append(records, r.records...)
	}

	s.setState(StateNormalizing)
	now := s.now()
	for i := range records {
		s.normalizeRecord(&records[i], now)
	}

	s.setState(StateFiltering)
	records = s.filterFresh(records, now)

	s.setState(StateDeduping)
	deduped, removed := dedup.Dedup(records)
	result.Records = deduped
	result.Duplicates = removed

	s.setState(StateReady)
	result.CompletedAt = s.now()
	s.log.Info().
		Str("cycle_id", result.CycleID).
		Int("records", len(result.Records)).
		Int("duplicates_removed", removed).
		Dur("elapsed", result.CompletedAt.Sub(started)).
		Msg("cycle complete")
	return result, nil
}

func (s *Service) enabledSources() []string {
	var out []string
	for _, name := range s.registry.Names() {
		cfg, ok := s.sources[name]
		if !ok {
			cfg = config.DefaultSource()
		}
		if cfg.Enabled {
			out = append(out, name)
		}
	}
	return out
}

// fetchAll fans sources out over the worker pool, one browser session per
// worker.
func (s *Service) fetchAll(ctx context.Context, names []string) []sourceResult {
	jobs := make(chan string)
	out := make(chan sourceResult, len(names))

	workers := s.cfg.Workers
	if workers > len(names) {
		workers = len(names)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sess, err := s.newSession(id)
			if err != nil {
				s.log.LogWarnf("worker %d: browser session unavailable, static only: %v", id, err)
				sess = nil
			}
			if sess != nil {
				defer sess.Close()
			}
			for name := range jobs {
				out <- s.scrapeSource(ctx, name, sess)
			}
		}(w)
	}

	for _, name := range names {
		select {
		case jobs <- name:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]sourceResult, 0, len(names))
	for r := range out {
		results = append(results, r)
	}
	return results
}

// scrapeSource walks a portal's result pages until an empty page, the page
// cap, or a hard failure. One source failing never propagates past its own
// stats entry.
func (s *Service) scrapeSource(ctx context.Context, name string, sess *fetch.Session) sourceResult {
	res := sourceResult{name: name, stats: model.SourceCycleStats{Attempted: true}}

	adapter, ok := s.registry.Get(name)
	if !ok {
		res.stats.LastError = "no adapter registered"
		s.monitor.RecordFailure(name, fmt.Errorf("no adapter registered for %s", name))
		return res
	}
	cfg, ok := s.sources[name]
	if !ok {
		cfg = config.DefaultSource()
	}

	retrier := fetch.NewRetrier(cfg.MaxRetries, retryBaseDelay)
	sessFails := 0

	for page := 1; page <= cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			break
		}
		url := adapter.BuildURL(cfg, page)
		opts := fetch.Options{
			ProbeSelectors: adapter.ProbeSelectors(),
			ForceRendered:  adapter.PreferredTier() == model.TierRendered,
			Session:        sess,
		}

		out, err := retrier.Do(ctx, func(ctx context.Context) (*model.FetchOutcome, error) {
			return s.fetcher.Fetch(ctx, url, opts)
		})
		if err != nil || out.Status != model.OutcomeSuccess {
			if out != nil {
				err = fmt.Errorf("page %d: fetch outcome %s", page, out.Status)
			} else {
				err = fmt.Errorf("page %d: %w", page, err)
			}
			if sess != nil && out != nil && out.Tier == model.TierRendered {
				sessFails++
				if sessFails >= sessionFailLimit {
					if rerr := sess.Restart(); rerr != nil {
						s.log.LogWarnf("%s: session restart failed: %v", name, rerr)
					}
					sessFails = 0
				}
			}
			if page == 1 {
				res.stats.LastError = err.Error()
				s.monitor.RecordFailure(name, err)
				return res
			}
			// deeper pages failing just ends pagination
			s.log.LogDebugf("%s: stopping pagination: %v", name, err)
			break
		}
		sessFails = 0

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(out.HTML))
		if err != nil {
			s.log.LogWarnf("%s: page %d parse: %v", name, page, err)
			break
		}
		pageRecords, inspected := adapter.ParsePage(doc, cfg)
		res.inspected += inspected
		if len(pageRecords) == 0 {
			break
		}
		res.records = append(res.records, pageRecords...)

		if page < cfg.MaxPages && cfg.RequestDelayMs > 0 {
			if err := s.sleep(ctx, time.Duration(cfg.RequestDelayMs)*time.Millisecond); err != nil {
				break
			}
		}
	}

	if cfg.DeepScrape || cfg.VerifyLinks {
		s.visitDetails(ctx, name, cfg, sess, res.records)
	}

	// an aborted source must not count as a cumulative success
	if err := ctx.Err(); err != nil {
		res.stats.LastError = err.Error()
		s.monitor.RecordFailure(name, err)
		return res
	}

	res.stats.Succeeded = true
	res.stats.JobsFound = len(res.records)
	// quality ratio is admitted records over cards inspected; adapters drop
	// cards missing a mandatory field
	s.monitor.RecordSuccess(name, len(res.records), len(res.records), res.inspected)
	return res
}

// visitDetails fetches apply URLs to pull full descriptions (deep scrape) and
// confirm the posting is still live (link verification). Capped per cycle so
// a large result page cannot multiply fetch volume.
func (s *Service) visitDetails(ctx context.Context, name string, cfg config.SourceConfig, sess *fetch.Session, records []model.JobRecord) {
	visited := 0
	for i := range records {
		if visited >= deepScrapeLimit || ctx.Err() != nil {
			return
		}
		if !cfg.DeepScrape && records[i].LinkVerified {
			continue
		}
		out, err := s.fetcher.Fetch(ctx, records[i].ApplyURL, fetch.Options{Session: sess})
		visited++
		if err != nil || out.Status != model.OutcomeSuccess {
			continue
		}
		records[i].LinkVerified = true
		if cfg.DeepScrape {
			if desc := source.ExtractDescription(out.HTML); desc != "" {
				records[i].Description = desc
			}
		}
		if cfg.RequestDelayMs > 0 {
			if err := s.sleep(ctx, time.Duration(cfg.RequestDelayMs)*time.Millisecond); err != nil {
				return
			}
		}
	}
}

// normalizeRecord resolves the posted date, classifies, and enriches one
// record in place.
func (s *Service) normalizeRecord(rec *model.JobRecord, now time.Time) {
	if rec.PostedAt.IsZero() {
		if t, ok := normalize.PostedAt(rec.PostedRaw, now); ok {
			rec.PostedAt = t
		} else {
			days := 1
			if a, ok := s.registry.Get(rec.Source); ok {
				days = a.DefaultRecencyDays()
			}
			rec.PostedAt = normalize.AssumeRecent(now, days)
		}
	}

	cls := classify.Classify(rec.Title, rec.Description)
	rec.JobType = cls.Type
	rec.Confidence = cls.Confidence

	enrich.Enrich(rec, now)
	if rec.ScrapedAt.IsZero() {
		rec.ScrapedAt = now
	}
}

// filterFresh drops records older than the freshness window. A source-level
// date_filter_days overrides the global default.
func (s *Service) filterFresh(records []model.JobRecord, now time.Time) []model.JobRecord {
	kept := records[:0:0]
	for _, rec := range records {
		days := s.cfg.FreshnessDays
		if sc, ok := s.sources[rec.Source]; ok && sc.DateFilterDays > 0 {
			days = sc.DateFilterDays
		}
		if days <= 0 {
			kept = append(kept, rec)
			continue
		}
		cutoff := now.AddDate(0, 0, -days)
		if !rec.PostedAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
