package intel

import (
	"context"

	"github.com/sells-group/briefing-cli/pkg/newsapi"
)

// mockScraper implements scrape.Scraper for testing.
type mockScraper struct {
	text      string
	err       error
	gotDomain string
}

func (m *mockScraper) FetchPage(_ context.Context, domain string) (string, error) {
	m.gotDomain = domain
	return m.text, m.err
}

// mockHeadlineSource implements HeadlineSource for testing.
type mockHeadlineSource struct {
	headlines  []string
	err        error
	gotCompany string
}

func (m *mockHeadlineSource) Headlines(_ context.Context, companyName string) ([]string, error) {
	m.gotCompany = companyName
	return m.headlines, m.err
}

// mockNewsClient implements newsapi.Client for testing.
type mockNewsClient struct {
	resp     *newsapi.EverythingResponse
	err      error
	gotQuery string
}

func (m *mockNewsClient) Everything(_ context.Context, query string) (*newsapi.EverythingResponse, error) {
	m.gotQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}
