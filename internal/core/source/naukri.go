package source

import (
	"fmt"
	"net/url"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const naukriBase = "https://www.naukri.com"

// Naukri renders listings entirely client-side; the static tier never sees a
// card, so the adapter goes straight to the browser.
type Naukri struct{}

func NewNaukri() *Naukri { return &Naukri{} }

func (a *Naukri) Name() string              { return "naukri" }
func (a *Naukri) PreferredTier() model.Tier { return model.TierRendered }
func (a *Naukri) DefaultRecencyDays() int   { return 2 }

func (a *Naukri) BuildURL(cfg config.SourceConfig, page int) string {
	slug := slugify(cfg.SearchQuery)
	path := fmt.Sprintf("/%s-jobs", slug)
	if cfg.Location != "" {
		path = fmt.Sprintf("/%s-jobs-in-%s", slug, slugify(cfg.Location))
	}
	if page > 1 {
		path = fmt.Sprintf("%s-%d", path, page)
	}
	q := url.Values{}
	q.Set("k", cfg.SearchQuery)
	q.Set("experience", "0")
	if cfg.DateFilterDays > 0 {
		q.Set("jobAge", fmt.Sprint(cfg.DateFilterDays))
	}
	return naukriBase + path + "?" + q.Encode()
}

func (a *Naukri) ProbeSelectors() []string {
	return []string{".srp-jobtuple-wrapper", ".jobTuple", "article.jobTuple"}
}

func (a *Naukri) ParsePage(doc *goquery.Document, cfg config.SourceConfig) ([]model.JobRecord, int) {
	cards := selectCards(doc, []string{
		".srp-jobtuple-wrapper",
		"article.jobTuple",
		".jobTuple",
	})
	if cards == nil {
		return nil, 0
	}

	var out []model.JobRecord
	now := time.Now()
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, "a.title", ".title a", "a.jobTitle")
		company := firstText(card, "a.comp-name", ".comp-name", "a.subTitle", ".companyInfo a")
		applyURL := resolveURL(naukriBase, firstAttr(card, "href", "a.title", ".title a", "a.jobTitle"))

		if title == "" || company == "" || applyURL == "" {
			return
		}

		rec := model.JobRecord{
			Title:       title,
			Company:     company,
			ApplyURL:    applyURL,
			Source:      a.Name(),
			Location:    firstText(card, ".locWdth", "span.loc", ".location span", ".loc-wrap"),
			Salary:      firstText(card, ".sal-wrap span[title]", "span.sal", ".salary"),
			Description: firstText(card, "span.job-desc", ".job-description", ".job-desc"),
			PostedRaw:   firstText(card, "span.job-post-day", ".jobTupleFooter .postedDate", ".type br + span"),
			ScrapedAt:   now,
			JobType:     model.TypeUnknown,
		}
		if exp := firstText(card, ".expwdth", "span.exp", ".experience"); exp != "" {
			rec.Description = rec.Description + " Experience: " + exp
		}
		out = append(out, rec)
	})
	return out, cards.Length()
}
