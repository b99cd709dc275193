package source

import (
	"fmt"
	"net/url"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const linkedinBase = "https://www.linkedin.com"

// LinkedIn uses the guest job-search endpoint. Listing HTML is server
// rendered for anonymous visitors, but the portal rate-limits aggressively,
// so the rendered tier ends up taking over on most runs.
type LinkedIn struct{}

func NewLinkedIn() *LinkedIn { return &LinkedIn{} }

func (a *LinkedIn) Name() string              { return "linkedin" }
func (a *LinkedIn) PreferredTier() model.Tier { return model.TierStatic }
func (a *LinkedIn) DefaultRecencyDays() int   { return 1 }

func (a *LinkedIn) BuildURL(cfg config.SourceConfig, page int) string {
	q := url.Values{}
	q.Set("keywords", cfg.SearchQuery)
	if cfg.Location != "" {
		q.Set("location", cfg.Location)
	}
	// entry level + internship experience tokens
	q.Set("f_E", "1,2")
	if cfg.DateFilterDays > 0 {
		// date-posted token is expressed in seconds
		q.Set("f_TPR", fmt.Sprintf("r%d", cfg.DateFilterDays*86400))
	}
	q.Set("start", fmt.Sprint((page-1)*25))
	return linkedinBase + "/jobs/search?" + q.Encode()
}

func (a *LinkedIn) ProbeSelectors() []string {
	return []string{".base-card", ".job-search-card", "ul.jobs-search__results-list li"}
}

func (a *LinkedIn) ParsePage(doc *goquery.Document, cfg config.SourceConfig) ([]model.JobRecord, int) {
	cards := selectCards(doc, []string{
		"ul.jobs-search__results-list > li",
		".base-card",
		".job-search-card",
	})
	if cards == nil {
		return nil, 0
	}

	var out []model.JobRecord
	now := time.Now()
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, "h3.base-search-card__title", ".base-search-card__title", "h3")
		company := firstText(card, "h4.base-search-card__subtitle a", ".base-search-card__subtitle", "h4")
		applyURL := resolveURL(linkedinBase, firstAttr(card, "href", "a.base-card__full-link", "a[data-tracking-control-name]", "a"))

		if title == "" || company == "" || applyURL == "" {
			return
		}

		rec := model.JobRecord{
			Title:     title,
			Company:   company,
			ApplyURL:  applyURL,
			Source:    a.Name(),
			Location:  firstText(card, ".job-search-card__location", ".base-search-card__metadata span"),
			PostedRaw: firstText(card, "time.job-search-card__listdate", "time", ".job-search-card__listdate--new"),
			ScrapedAt: now,
			JobType:   model.TypeUnknown,
		}
		if dt, ok := card.Find("time").First().Attr("datetime"); ok {
			if t, err := time.Parse("2006-01-02", dt); err == nil {
				rec.PostedAt = t
			}
		}
		out = append(out, rec)
	})
	return out, cards.Length()
}
