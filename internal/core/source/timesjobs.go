package source

import (
	"fmt"
	"net/url"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const timesjobsBase = "https://www.timesjobs.com"

// TimesJobs still serves classic server-rendered listing markup.
type TimesJobs struct{}

func NewTimesJobs() *TimesJobs { return &TimesJobs{} }

func (a *TimesJobs) Name() string              { return "timesjobs" }
func (a *TimesJobs) PreferredTier() model.Tier { return model.TierStatic }
func (a *TimesJobs) DefaultRecencyDays() int   { return 2 }

func (a *TimesJobs) BuildURL(cfg config.SourceConfig, page int) string {
	q := url.Values{}
	q.Set("searchType", "personalizedSearch")
	q.Set("from", "submit")
	q.Set("txtKeywords", cfg.SearchQuery)
	if cfg.Location != "" {
		q.Set("txtLocation", cfg.Location)
	}
	q.Set("cboWorkExp1", "0")
	q.Set("sequence", fmt.Sprint(page))
	q.Set("startPage", "1")
	return timesjobsBase + "/candidate/job-search.html?" + q.Encode()
}

func (a *TimesJobs) ProbeSelectors() []string {
	return []string{"li.clearfix.job-bx", ".job-bx"}
}

func (a *TimesJobs) ParsePage(doc *goquery.Document, cfg config.SourceConfig) ([]model.JobRecord, int) {
	cards := selectCards(doc, []string{
		"li.clearfix.job-bx",
		".job-bx",
	})
	if cards == nil {
		return nil, 0
	}

	var out []model.JobRecord
	now := time.Now()
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, "h2 a", ".joblist-comp-name + h2", "h2")
		company := firstText(card, "h3.joblist-comp-name", ".joblist-comp-name")
		applyURL := resolveURL(timesjobsBase, firstAttr(card, "href", "h2 a", "a.posoverlay_srp"))

		if title == "" || company == "" || applyURL == "" {
			return
		}

		rec := model.JobRecord{
			Title:       title,
			Company:     company,
			ApplyURL:    applyURL,
			Source:      a.Name(),
			Location:    firstText(card, "ul.top-jd-dtl li span", ".loc span", ".srp-loc"),
			Description: firstText(card, "ul.list-job-dtl li", ".list-job-dtl .srp-skills"),
			PostedRaw:   firstText(card, "span.sim-posted span", ".sim-posted"),
			ScrapedAt:   now,
			JobType:     model.TypeUnknown,
		}
		out = append(out, rec)
	})
	return out, cards.Length()
}
