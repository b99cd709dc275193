package source

import (
	"strings"
	"testing"

	"jobradar/internal/config"
	"jobradar/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestRegistryCoversAllPortals(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"foundit", "indeed", "internshala", "linkedin", "naukri", "timesjobs"}, r.Names())

	for _, name := range r.Names() {
		a, ok := r.Get(name)
		require.True(t, ok)
		assert.Equal(t, name, a.Name())
		assert.NotEmpty(t, a.ProbeSelectors())
		assert.GreaterOrEqual(t, a.DefaultRecencyDays(), 1)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "SDE Intern", cleanText("  SDE \n\t Intern  "))
	assert.Equal(t, "Acme Corp", cleanText("Acme Corp"))
	assert.Equal(t, "", cleanText("   "))
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://internshala.com/internship/detail/x", resolveURL("https://internshala.com", "/internship/detail/x"))
	assert.Equal(t, "https://other.example/jobs/1", resolveURL("https://internshala.com", "https://other.example/jobs/1"))
	assert.Equal(t, "", resolveURL("https://internshala.com", "  "))
}

func TestInternshalaParsePage(t *testing.T) {
	html := `<html><body>
	<div class="individual_internship">
		<h3 class="job-internship-name"><a href="/internship/detail/sde-intern-1">SDE Intern</a></h3>
		<p class="company-name">Acme Labs</p>
		<div class="locations"><a>Bangalore</a></div>
		<span class="stipend">15000 /month</span>
		<div class="status-success"><span>Posted 2 days ago</span></div>
	</div>
	<div class="individual_internship">
		<h3 class="job-internship-name"><a href="/internship/detail/no-company">Orphan Card</a></h3>
	</div>
	</body></html>`

	recs, inspected := NewInternshala().ParsePage(doc(t, html), config.DefaultSource())
	require.Len(t, recs, 1)
	assert.Equal(t, 2, inspected)

	rec := recs[0]
	assert.Equal(t, "SDE Intern", rec.Title)
	assert.Equal(t, "Acme Labs", rec.Company)
	assert.Equal(t, "https://internshala.com/internship/detail/sde-intern-1", rec.ApplyURL)
	assert.Equal(t, "internshala", rec.Source)
	assert.Equal(t, "Bangalore", rec.Location)
	assert.Equal(t, "15000 /month", rec.Salary)
	assert.Equal(t, "Posted 2 days ago", rec.PostedRaw)
	assert.Equal(t, model.TypeUnknown, rec.JobType)
	assert.True(t, rec.Complete())
}

func TestInternshalaBuildURL(t *testing.T) {
	cfg := config.SourceConfig{SearchQuery: "Software Development"}
	assert.Equal(t, "https://internshala.com/internships/keywords-software-development/page-2",
		NewInternshala().BuildURL(cfg, 2))

	cfg.Location = "New Delhi"
	assert.Equal(t, "https://internshala.com/internships/software-development-internship-in-new-delhi/page-1",
		NewInternshala().BuildURL(cfg, 1))
}

func TestLinkedInParsePage(t *testing.T) {
	html := `<html><body><ul class="jobs-search__results-list">
	<li><div class="base-card">
		<a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/12345"></a>
		<h3 class="base-search-card__title">Backend Engineer Intern</h3>
		<h4 class="base-search-card__subtitle"><a>Beta Systems</a></h4>
		<span class="job-search-card__location">Mumbai, India</span>
		<time class="job-search-card__listdate" datetime="2026-03-10">3 days ago</time>
	</div></li>
	</ul></body></html>`

	recs, inspected := NewLinkedIn().ParsePage(doc(t, html), config.DefaultSource())
	require.Len(t, recs, 1)
	assert.Equal(t, 1, inspected)

	rec := recs[0]
	assert.Equal(t, "Backend Engineer Intern", rec.Title)
	assert.Equal(t, "Beta Systems", rec.Company)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/12345", rec.ApplyURL)
	assert.Equal(t, "Mumbai, India", rec.Location)
	// machine-readable datetime attr wins over relative text
	assert.Equal(t, "2026-03-10", rec.PostedAt.Format("2006-01-02"))
}

func TestLinkedInBuildURL(t *testing.T) {
	cfg := config.SourceConfig{SearchQuery: "sde", DateFilterDays: 7}
	u := NewLinkedIn().BuildURL(cfg, 2)
	assert.Contains(t, u, "keywords=sde")
	assert.Contains(t, u, "f_E=1%2C2")
	assert.Contains(t, u, "f_TPR=r604800")
	assert.Contains(t, u, "start=25")
}

func TestTimesJobsParsePage(t *testing.T) {
	html := `<html><body>
	<li class="clearfix job-bx">
		<h2><a href="https://www.timesjobs.com/job-detail/sde-1">Software Engineer</a></h2>
		<h3 class="joblist-comp-name">Gamma Tech</h3>
		<ul class="top-jd-dtl"><li><span>Chennai</span></li></ul>
		<span class="sim-posted"><span>Posted few hours ago</span></span>
	</li>
	</body></html>`

	recs, _ := NewTimesJobs().ParsePage(doc(t, html), config.DefaultSource())
	require.Len(t, recs, 1)
	assert.Equal(t, "Software Engineer", recs[0].Title)
	assert.Equal(t, "Gamma Tech", recs[0].Company)
	assert.Equal(t, "Chennai", recs[0].Location)
	assert.Equal(t, "Posted few hours ago", recs[0].PostedRaw)
}

func TestParsePageEmptyDocument(t *testing.T) {
	empty := doc(t, "<html><body><p>no results found</p></body></html>")
	for _, name := range NewRegistry().Names() {
		a, _ := NewRegistry().Get(name)
		recs, inspected := a.ParsePage(empty, config.DefaultSource())
		assert.Empty(t, recs, "adapter %s", name)
		assert.Zero(t, inspected, "adapter %s", name)
	}
}

func TestParsePageRejectsUnresolvableApplyURL(t *testing.T) {
	// an invalid percent-escape makes url.Parse fail, so the card has no
	// usable apply URL and must not cross the boundary
	internshala := `<html><body>
	<div class="individual_internship">
		<h3 class="job-internship-name"><a href="/internship/detail/%zz-bad-escape">SDE Intern</a></h3>
		<p class="company-name">Acme Labs</p>
	</div>
	</body></html>`

	recs, inspected := NewInternshala().ParsePage(doc(t, internshala), config.DefaultSource())
	assert.Empty(t, recs)
	assert.Equal(t, 1, inspected)

	linkedin := `<html><body><ul class="jobs-search__results-list">
	<li><div class="base-card">
		<a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/%zz"></a>
		<h3 class="base-search-card__title">Backend Engineer</h3>
		<h4 class="base-search-card__subtitle"><a>Beta Systems</a></h4>
	</div></li>
	</ul></body></html>`

	recs, inspected = NewLinkedIn().ParsePage(doc(t, linkedin), config.DefaultSource())
	assert.Empty(t, recs)
	assert.Equal(t, 1, inspected)
}

func TestExtractDescription(t *testing.T) {
	html := `<html><body>
	<nav>site navigation</nav>
	<div class="job-description">
		<h2>About the role</h2>
		<p>Build and ship backend services.</p>
		<div class="share-buttons">share</div>
	</div>
	</body></html>`

	got := ExtractDescription(html)
	assert.Contains(t, got, "About the role")
	assert.Contains(t, got, "Build and ship backend services.")
	assert.NotContains(t, got, "site navigation")
	assert.NotContains(t, got, "share")
}
