package intel

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/briefing-cli/internal/model"
	"github.com/sells-group/briefing-cli/internal/resilience"
	"github.com/sells-group/briefing-cli/internal/scrape"
)

// Aggregator runs the website and news fetches concurrently and reconciles
// their outcomes into one IntelligenceSnapshot.
type Aggregator struct {
	scraper scrape.Scraper
	news    HeadlineSource
}

func NewAggregator(scraper scrape.Scraper, news HeadlineSource) *Aggregator {
	return &Aggregator{scraper: scraper, news: news}
}

// Gather fetches page text and headlines for domain. The two fetches are
// independent units of work: one failing never blocks or aborts the other.
// FetchError is set only when the website fetch failed and yielded no text;
// a news failure alone degrades to a placeholder headline.
func (a *Aggregator) Gather(ctx context.Context, domain string) model.IntelligenceSnapshot {
	companyName := CompanyNameFromDomain(domain)

	var (
		pageText  string
		scrapeErr error
		headlines []string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pageText, scrapeErr = a.scraper.FetchPage(gctx, domain)
		if scrapeErr != nil {
			zap.L().Error("intel: website fetch failed",
				zap.String("domain", domain),
				zap.String("class", resilience.ClassifyError(scrapeErr)),
				zap.Error(scrapeErr),
			)
		}
		return nil // news fetch proceeds regardless
	})

	g.Go(func() error {
		var newsErr error
		headlines, newsErr = a.news.Headlines(gctx, companyName)
		if newsErr != nil {
			zap.L().Warn("intel: news fetch degraded",
				zap.String("company", companyName),
				zap.Error(newsErr),
			)
		}
		return nil // placeholder headline already substituted
	})

	_ = g.Wait()

	snapshot := model.IntelligenceSnapshot{
		PageText:  pageText,
		Headlines: headlines,
	}
	if scrapeErr != nil && strings.TrimSpace(pageText) == "" {
		snapshot.FetchError = fmt.Sprintf("Critical error: %v", scrapeErr)
	}

	zap.L().Info("intel: snapshot assembled",
		zap.String("domain", domain),
		zap.Int("page_chars", len(pageText)),
		zap.Int("headlines", len(headlines)),
		zap.Bool("valid", snapshot.IsValid()),
	)
	return snapshot
}
