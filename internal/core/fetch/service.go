package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobradar/internal/logger"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

const staticTimeout = 15 * time.Second

// challenge markers seen on anti-bot interstitials
var blockedMarkers = []string{
	"just a moment",
	"checking your browser",
	"attention required",
	"verify you are human",
}

// Options controls one fetch: which selectors must match for the static
// result to count as usable, and whether to skip the static tier entirely.
type Options struct {
	ProbeSelectors []string
	ForceRendered  bool
	Session        *Session
}

// Service implements the two-tier fetch: static colly GET first, rendered
// browser fallback when the static result is empty, blocked, or rate limited.
type Service struct {
	log *logger.Logger
}

func NewService() *Service {
	return &Service{log: logger.New("FetchService")}
}

// Fetch retrieves url, escalating from static to rendered when needed. The
// returned outcome always carries the tier that produced it.
func (s *Service) Fetch(ctx context.Context, url string, opts Options) (*model.FetchOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !opts.ForceRendered {
		out, err := s.fetchStatic(url, opts.ProbeSelectors)
		if err == nil && !shouldEscalate(out.Status) {
			return out, nil
		}
		if err != nil {
			s.log.LogDebugf("static fetch failed for %s: %v", url, err)
		} else {
			s.log.Info().Str("url", url).Str("outcome", string(out.Status)).Msg("escalating to rendered tier")
		}
	}

	if opts.Session == nil {
		return nil, fmt.Errorf("rendered tier required for %s but no browser session", url)
	}
	return opts.Session.Fetch(url)
}

// fetchStatic performs a plain HTTP GET with a browser header profile.
func (s *Service) fetchStatic(url string, probes []string) (*model.FetchOutcome, error) {
	profile := RandomProfile()

	c := colly.NewCollector(colly.UserAgent(profile.UserAgent))
	c.SetRequestTimeout(staticTimeout)

	var body string
	var status int
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", profile.Accept)
		r.Headers.Set("Accept-Language", profile.AcceptLanguage)
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
			body = string(r.Body)
		}
		fetchErr = err
	})

	if err := c.Visit(url); err != nil {
		fetchErr = err
	}
	c.Wait()

	if fetchErr != nil && status == 0 {
		return nil, fetchErr
	}

	out := &model.FetchOutcome{
		HTML:       body,
		Title:      htmlTitle(body),
		HTTPStatus: status,
		Tier:       model.TierStatic,
	}
	out.Status = classifyOutcome(status, body, out.Title)

	// A well-formed page with none of the expected content selectors means
	// the markup is rendered client-side; the static tier cannot see it.
	if out.Status == model.OutcomeSuccess && len(probes) > 0 && !anySelectorMatches(body, probes) {
		out.Status = model.OutcomeParseEmpty
	}
	return out, nil
}

// shouldEscalate reports whether a static outcome warrants the rendered tier.
// Hard failures (404 and the like) are permanent; a browser will not see a
// different page.
func shouldEscalate(status model.OutcomeStatus) bool {
	switch status {
	case model.OutcomeBlocked, model.OutcomeRateLimited, model.OutcomeParseEmpty:
		return true
	}
	return false
}

// classifyOutcome maps a response to an explicit status the retry controller
// can branch on, instead of signalling anti-bot detection through errors.
func classifyOutcome(status int, body, title string) model.OutcomeStatus {
	switch {
	case status == 429:
		return model.OutcomeRateLimited
	case status == 403:
		return model.OutcomeBlocked
	case status >= 500:
		return model.OutcomeRateLimited
	case status == 404:
		return model.OutcomeFailed
	}

	lowTitle := strings.ToLower(title)
	for _, m := range blockedMarkers {
		if strings.Contains(lowTitle, m) {
			return model.OutcomeBlocked
		}
	}
	if strings.Contains(body, "Cloudflare") && strings.Contains(body, "Ray ID") {
		return model.OutcomeBlocked
	}

	if len(strings.TrimSpace(body)) < 100 {
		return model.OutcomeParseEmpty
	}
	return model.OutcomeSuccess
}

func anySelectorMatches(html string, selectors []string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

func htmlTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
