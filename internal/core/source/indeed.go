package source

import (
	"fmt"
	"net/url"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const indeedBase = "https://in.indeed.com"

// Indeed sits behind an aggressive anti-bot layer; static fetches get the
// challenge interstitial almost every time, so the browser tier is the
// starting point.
type Indeed struct{}

func NewIndeed() *Indeed { return &Indeed{} }

func (a *Indeed) Name() string              { return "indeed" }
func (a *Indeed) PreferredTier() model.Tier { return model.TierRendered }
func (a *Indeed) DefaultRecencyDays() int   { return 1 }

func (a *Indeed) BuildURL(cfg config.SourceConfig, page int) string {
	q := url.Values{}
	q.Set("q", cfg.SearchQuery)
	if cfg.Location != "" {
		q.Set("l", cfg.Location)
	}
	if cfg.DateFilterDays > 0 {
		q.Set("fromage", fmt.Sprint(cfg.DateFilterDays))
	}
	q.Set("sc", "0kf:explvl(ENTRY_LEVEL);") // entry-level filter token
	if page > 1 {
		q.Set("start", fmt.Sprint((page-1)*10))
	}
	return indeedBase + "/jobs?" + q.Encode()
}

func (a *Indeed) ProbeSelectors() []string {
	return []string{".job_seen_beacon", "td.resultContent", ".jobsearch-ResultsList li"}
}

func (a *Indeed) ParsePage(doc *goquery.Document, cfg config.SourceConfig) ([]model.JobRecord, int) {
	cards := selectCards(doc, []string{
		".job_seen_beacon",
		".jobsearch-ResultsList > li",
		".result",
	})
	if cards == nil {
		return nil, 0
	}

	var out []model.JobRecord
	now := time.Now()
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, "h2.jobTitle span[title]", "h2.jobTitle a", "h2.jobTitle")
		company := firstText(card, "span[data-testid='company-name']", ".companyName", "span.company")
		applyURL := resolveURL(indeedBase, firstAttr(card, "href", "h2.jobTitle a", "a.jcs-JobTitle", "a[data-jk]"))

		if title == "" || company == "" || applyURL == "" {
			return
		}

		rec := model.JobRecord{
			Title:       title,
			Company:     company,
			ApplyURL:    applyURL,
			Source:      a.Name(),
			Location:    firstText(card, "div[data-testid='text-location']", ".companyLocation", ".location"),
			Salary:      firstText(card, ".salary-snippet-container", "div[data-testid='attribute_snippet_testid']", ".salaryText"),
			Description: firstText(card, ".job-snippet", "div[data-testid='jobsnippet_footer']", ".summary"),
			PostedRaw:   firstText(card, "span[data-testid='myJobsStateDate']", ".date", "span.date"),
			ScrapedAt:   now,
			JobType:     model.TypeUnknown,
		}
		out = append(out, rec)
	})
	return out, cards.Length()
}
