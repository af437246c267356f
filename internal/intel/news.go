// Package intel gathers per-domain company intelligence from the public
// website and recent news coverage, reconciling partial failures into a
// single snapshot the synthesis layer can consume.
package intel

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-cli/pkg/newsapi"
)

// notConfiguredHeadline stands in for real headlines when no NewsAPI key is
// present. Running without the key is a supported degraded mode, not an error.
const notConfiguredHeadline = "News API not configured - add NEWS_API_KEY to .env"

// HeadlineSource returns recent headlines for a company display name. The
// returned slice is never empty: every miss or failure substitutes a single
// placeholder headline so synthesis always has a news section to work with.
type HeadlineSource interface {
	Headlines(ctx context.Context, companyName string) ([]string, error)
}

// NewsFetcher implements HeadlineSource over the NewsAPI "everything" search.
type NewsFetcher struct {
	client newsapi.Client
}

// NewNewsFetcher returns a fetcher backed by client. A nil client puts the
// fetcher in not-configured mode.
func NewNewsFetcher(client newsapi.Client) *NewsFetcher {
	return &NewsFetcher{client: client}
}

// Headlines fetches the most recent article titles mentioning companyName.
// On transport failure it returns a placeholder headline alongside the error
// so the caller can log the failure and still proceed with the placeholder.
func (f *NewsFetcher) Headlines(ctx context.Context, companyName string) ([]string, error) {
	if f.client == nil {
		zap.L().Debug("intel: news backend not configured, substituting placeholder")
		return []string{notConfiguredHeadline}, nil
	}

	resp, err := f.client.Everything(ctx, companyName)
	if err != nil {
		return []string{fmt.Sprintf("Error fetching news: %v", err)},
			eris.Wrapf(err, "intel: fetch news for %s", companyName)
	}

	headlines := make([]string, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		if article.Title != "" {
			headlines = append(headlines, article.Title)
		}
	}
	if len(headlines) == 0 {
		return []string{fmt.Sprintf("No recent news found for %s", companyName)}, nil
	}
	return headlines, nil
}
