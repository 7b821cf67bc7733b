package searchapitest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSearch_RanksAndHighlights(t *testing.T) {
	// Given: the default catalog
	params := url.Values{"q": {"ai"}, "limit": {"20"}}

	// When: searching for a term in two descriptions
	resp := catalogSearch(DefaultCatalog(), params)

	// Then: matches are highlighted and sorted by score
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, len(resp.Results), resp.TotalResults)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Score, resp.Results[i].Score)
	}
	assert.Contains(t, resp.Results[0].Highlights["description"], `<mark class="bg-yellow-200 px-1 rounded">AI</mark>`)
}

func TestCatalogSearch_EmptyQueryAndFilters(t *testing.T) {
	resp := catalogSearch(DefaultCatalog(), url.Values{})

	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalResults)
}

func TestCatalogSearch_FiltersOnly(t *testing.T) {
	resp := catalogSearch(DefaultCatalog(), url.Values{"location": {"usa"}})

	require.Len(t, resp.Results, 2)
	assert.Equal(t, map[string]string{"location": "usa"}, resp.Filters)
}

func TestCatalogSearch_Limit(t *testing.T) {
	resp := catalogSearch(DefaultCatalog(), url.Values{"sector": {"FinTech"}, "limit": {"1"}})

	assert.Len(t, resp.Results, 1)
}

func TestMarkTerms_DoesNotNestMarks(t *testing.T) {
	out := markTerms("Smart class", []string{"a", "class"})

	assert.Equal(t,
		`Sm<mark class="bg-yellow-200 px-1 rounded">a</mark>rt <mark class="bg-yellow-200 px-1 rounded">class</mark>`,
		out)
}

func TestCatalogFilters_SplitsLocation(t *testing.T) {
	opts := catalogFilters(DefaultCatalog())

	assert.Equal(t, []string{"Germany", "India", "Kenya", "UK", "USA"}, opts.Locations)
	assert.Equal(t, []string{"AgriTech", "CleanTech", "EdTech", "FinTech", "HealthTech"}, opts.Sectors)
}
