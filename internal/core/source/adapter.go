package source

import (
	"net/url"
	"sort"
	"strings"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// Adapter is the per-portal capability contract: build the listing URL for a
// page, locate result cards in the fetched document, and map a card to a
// canonical record. One implementation per portal, registered in a fixed
// table at startup.
type Adapter interface {
	Name() string
	// PreferredTier is the fetch tier to start with. Portals that render
	// listings client-side skip the static attempt entirely.
	PreferredTier() model.Tier
	BuildURL(cfg config.SourceConfig, page int) string
	// ProbeSelectors are the card selectors a static fetch must match for
	// its result to be usable.
	ProbeSelectors() []string
	// ParsePage maps result cards to records. Cards missing a mandatory
	// field are dropped; the second return is the number of cards
	// inspected, so the monitor can compute the admitted/inspected quality
	// ratio.
	ParsePage(doc *goquery.Document, cfg config.SourceConfig) ([]model.JobRecord, int)
	// DefaultRecencyDays is the posted-age assumed when a card carries no
	// parseable date text.
	DefaultRecencyDays() int
}

// Registry is the fixed source-identifier to adapter table.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	r := &Registry{adapters: map[string]Adapter{}}
	for _, a := range []Adapter{
		NewInternshala(),
		NewLinkedIn(),
		NewNaukri(),
		NewIndeed(),
		NewFoundit(),
		NewTimesJobs(),
	} {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns registered source identifiers in stable order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// --- shared extraction helpers ---

// cleanText collapses runs of whitespace (including NBSP) to single spaces.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// firstText returns the cleaned text of the first selector that matches.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if t := cleanText(sel.Find(s).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first selector that has it.
func firstAttr(sel *goquery.Selection, attr string, selectors ...string) string {
	for _, s := range selectors {
		if v, ok := sel.Find(s).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveURL joins a possibly-relative href against the portal base URL.
// Absolute URLs pass through unchanged.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(u).String()
}

// selectCards tries each selector set in priority order and returns the first
// non-empty result, guarding against portal markup drift.
func selectCards(doc *goquery.Document, selectorSets []string) *goquery.Selection {
	for _, sel := range selectorSets {
		if cards := doc.Find(sel); cards.Length() > 0 {
			return cards
		}
	}
	return nil
}

func slugify(q string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(q)), " ", "-")
}
