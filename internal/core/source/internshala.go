package source

import (
	"fmt"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const internshalaBase = "https://internshala.com"

// Internshala serves listing pages statically, so it is the cheapest source
// in the set.
type Internshala struct{}

func NewInternshala() *Internshala { return &Internshala{} }

func (a *Internshala) Name() string              { return "internshala" }
func (a *Internshala) PreferredTier() model.Tier { return model.TierStatic }
func (a *Internshala) DefaultRecencyDays() int   { return 1 }

func (a *Internshala) BuildURL(cfg config.SourceConfig, page int) string {
	slug := slugify(cfg.SearchQuery)
	if cfg.Location != "" {
		return fmt.Sprintf("%s/internships/%s-internship-in-%s/page-%d",
			internshalaBase, slug, slugify(cfg.Location), page)
	}
	return fmt.Sprintf("%s/internships/keywords-%s/page-%d", internshalaBase, slug, page)
}

func (a *Internshala) ProbeSelectors() []string {
	return []string{".individual_internship", ".internship_meta"}
}

func (a *Internshala) ParsePage(doc *goquery.Document, cfg config.SourceConfig) ([]model.JobRecord, int) {
	cards := selectCards(doc, []string{
		".individual_internship",
		".container-fluid.individual_internship",
		"div[internshipid]",
	})
	if cards == nil {
		return nil, 0
	}

	var out []model.JobRecord
	now := time.Now()
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, "h3.job-internship-name a", ".profile a", "h3 a")
		company := firstText(card, "p.company-name", ".company_name", ".company h4")
		applyURL := resolveURL(internshalaBase, firstAttr(card, "href", "h3.job-internship-name a", ".profile a", "a.view_detail_button"))

		if title == "" || company == "" || applyURL == "" {
			return
		}

		rec := model.JobRecord{
			Title:       title,
			Company:     company,
			ApplyURL:    applyURL,
			Source:      a.Name(),
			Location:    firstText(card, ".locations a", "#location_names span", ".location_link"),
			Salary:      firstText(card, ".stipend", ".stipend_container .stipend"),
			PostedRaw:   firstText(card, ".status-success span", ".posted_by_container", ".status span"),
			Description: firstText(card, ".internship_other_details", ".about_job"),
			ScrapedAt:   now,
			JobType:     model.TypeUnknown,
		}
		out = append(out, rec)
	})
	return out, cards.Length()
}
