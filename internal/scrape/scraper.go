package scrape

import "context"

// Scraper fetches a single sanitized page of text for a company domain.
type Scraper interface {
	FetchPage(ctx context.Context, domain string) (string, error)
}
