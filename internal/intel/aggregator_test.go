package intel

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestAggregator_BothSucceed(t *testing.T) {
	scraper := &mockScraper{text: "Acme builds rockets for small businesses."}
	news := &mockHeadlineSource{headlines: []string{"Acme raises Series B"}}
	agg := NewAggregator(scraper, news)

	snap := agg.Gather(context.Background(), "acme-corp.com")

	assert.Equal(t, "Acme builds rockets for small businesses.", snap.PageText)
	assert.Equal(t, []string{"Acme raises Series B"}, snap.Headlines)
	assert.Empty(t, snap.FetchError)
	assert.True(t, snap.IsValid())
	assert.Equal(t, "acme-corp.com", scraper.gotDomain)
	assert.Equal(t, "Acme Corp", news.gotCompany)
}

func TestAggregator_WebsiteFailureSetsFetchError(t *testing.T) {
	scraper := &mockScraper{err: eris.New("connection refused")}
	news := &mockHeadlineSource{headlines: []string{"Acme in the news"}}
	agg := NewAggregator(scraper, news)

	snap := agg.Gather(context.Background(), "acme.com")

	assert.Contains(t, snap.FetchError, "Critical error:")
	assert.Contains(t, snap.FetchError, "connection refused")
	assert.False(t, snap.IsValid())

	// The news fetch still ran and its result is preserved.
	assert.Equal(t, []string{"Acme in the news"}, snap.Headlines)
	assert.Equal(t, "Acme", news.gotCompany)
}

func TestAggregator_NewsFailureDoesNotInvalidate(t *testing.T) {
	scraper := &mockScraper{text: "Acme builds rockets."}
	news := &mockHeadlineSource{
		headlines: []string{"Error fetching news: timeout"},
		err:       eris.New("timeout"),
	}
	agg := NewAggregator(scraper, news)

	snap := agg.Gather(context.Background(), "acme.com")

	assert.Empty(t, snap.FetchError)
	assert.True(t, snap.IsValid())
	assert.Equal(t, []string{"Error fetching news: timeout"}, snap.Headlines)
}

func TestAggregator_PartialTextSuppressesFetchError(t *testing.T) {
	// A fetch that errored after extracting some text still counts as signal.
	scraper := &mockScraper{text: "Partial page text", err: eris.New("truncated read")}
	news := &mockHeadlineSource{headlines: []string{"headline"}}
	agg := NewAggregator(scraper, news)

	snap := agg.Gather(context.Background(), "acme.com")

	assert.Empty(t, snap.FetchError)
	assert.True(t, snap.IsValid())
	assert.Equal(t, "Partial page text", snap.PageText)
}

func TestAggregator_WhitespaceTextStillCritical(t *testing.T) {
	scraper := &mockScraper{text: "  \n\t ", err: eris.New("no content")}
	news := &mockHeadlineSource{headlines: []string{"headline"}}
	agg := NewAggregator(scraper, news)

	snap := agg.Gather(context.Background(), "acme.com")

	assert.Contains(t, snap.FetchError, "Critical error:")
	assert.False(t, snap.IsValid())
}
