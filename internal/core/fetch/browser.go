package fetch

import (
	"fmt"
	"time"

	"jobradar/internal/logger"
	"jobradar/internal/model"

	"github.com/playwright-community/playwright-go"
)

const (
	navTimeoutMs      = 15000
	navFallbackMs     = 30000
	settleWait        = 2 * time.Second
	scrollSteps       = 4
	scrollStepDelayMs = 400
)

// Session is a rendered-tier browser bound to a single worker. It is never
// shared between concurrent fetches; each aggregation worker owns exactly one
// session for its lifetime and reuses it to avoid relaunch cost.
type Session struct {
	log     *logger.Logger
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
	profile HeaderProfile
}

// NewSession launches a headless chromium with the anti-automation flags the
// portals are known to probe for.
func NewSession(id int) (*Session, error) {
	s := &Session{
		log:     logger.New(fmt.Sprintf("Browser-%d", id)),
		profile: RandomProfile(),
	}
	if err := s.launch(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) launch() error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("playwright run: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--no-first-run",
			"--disable-default-apps",
			"--disable-extensions",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launch: %w", err)
	}
	ctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(s.profile.UserAgent),
		ExtraHttpHeaders: map[string]string{
			"Accept":          s.profile.Accept,
			"Accept-Language": s.profile.AcceptLanguage,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("new context: %w", err)
	}
	s.pw, s.browser, s.ctx = pw, browser, ctx
	return nil
}

// Restart tears the browser down and relaunches it. Called after a fetch
// keeps failing through all retries; a wedged renderer never recovers on
// its own.
func (s *Session) Restart() error {
	s.log.LogWarn("restarting browser session")
	s.shutdown()
	return s.launch()
}

// Close releases the browser. The session must not be used afterwards.
func (s *Session) Close() {
	s.shutdown()
}

func (s *Session) shutdown() {
	if s.ctx != nil {
		_ = s.ctx.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		_ = s.pw.Stop()
	}
	s.ctx, s.browser, s.pw = nil, nil, nil
}

// Fetch navigates to url, scrolls to trigger lazy content, waits a fixed
// settle period, and returns the rendered document.
func (s *Session) Fetch(url string) (*model.FetchOutcome, error) {
	page, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	resp, navErr := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeoutMs),
	})
	if navErr != nil {
		// fallback to full load with a longer timeout
		resp, navErr = page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(navFallbackMs),
		})
		if navErr != nil {
			return nil, fmt.Errorf("goto failed: %w", navErr)
		}
	}

	// Scroll down in steps so lazily-loaded cards attach before capture.
	for i := 0; i < scrollSteps; i++ {
		_, _ = page.Evaluate(`() => window.scrollBy(0, document.body.scrollHeight / ` + fmt.Sprint(scrollSteps) + `)`)
		time.Sleep(scrollStepDelayMs * time.Millisecond)
	}
	time.Sleep(settleWait)

	content, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	title, _ := page.Title()

	status := 200
	if resp != nil {
		status = resp.Status()
	}

	out := &model.FetchOutcome{
		HTML:       content,
		Title:      title,
		HTTPStatus: status,
		Tier:       model.TierRendered,
	}
	out.Status = classifyOutcome(status, content, title)
	return out, nil
}
