package source

import (
	"fmt"
	"net/url"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const founditBase = "https://www.foundit.in"

// Foundit (formerly Monster India). Search results hydrate client-side.
type Foundit struct{}

func NewFoundit() *Foundit { return &Foundit{} }

func (a *Foundit) Name() string              { return "foundit" }
func (a *Foundit) PreferredTier() model.Tier { return model.TierRendered }
func (a *Foundit) DefaultRecencyDays() int   { return 2 }

func (a *Foundit) BuildURL(cfg config.SourceConfig, page int) string {
	q := url.Values{}
	q.Set("query", cfg.SearchQuery)
	if cfg.Location != "" {
		q.Set("locations", cfg.Location)
	}
	q.Set("experienceRanges", "0~1")
	q.Set("start", fmt.Sprint((page-1)*15))
	return founditBase + "/srp/results?" + q.Encode()
}

func (a *Foundit) ProbeSelectors() []string {
	return []string{".srpResultCardContainer", ".card-panel", "#srp-jobList div[id^='card']"}
}

func (a *Foundit) ParsePage(doc *goquery.Document, cfg config.SourceConfig) ([]model.JobRecord, int) {
	cards := selectCards(doc, []string{
		".srpResultCardContainer",
		".card-panel",
		".cardContainer",
	})
	if cards == nil {
		return nil, 0
	}

	var out []model.JobRecord
	now := time.Now()
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, ".jobTitle", "h3.medium a", "h3")
		company := firstText(card, ".companyName", ".company-name", "span.subtitle-link")
		applyURL := resolveURL(founditBase, firstAttr(card, "href", ".jobTitle a", "h3.medium a", "a"))

		if title == "" || company == "" || applyURL == "" {
			return
		}

		rec := model.JobRecord{
			Title:     title,
			Company:   company,
			ApplyURL:  applyURL,
			Source:    a.Name(),
			Location:  firstText(card, ".details.location", ".loc-link", ".location"),
			Salary:    firstText(card, ".packageDetail", ".package"),
			PostedRaw: firstText(card, ".timeText", ".posted-update", "span.time"),
			ScrapedAt: now,
			JobType:   model.TypeUnknown,
		}
		out = append(out, rec)
	})
	return out, cards.Length()
}
