package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-cli/internal/resilience"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; BriefingBot/1.0)"

// Options configures the site scraper.
type Options struct {
	Timeout   time.Duration // per-fetch budget, default 10s
	MaxChars  int           // sanitized text budget, default 2000
	UserAgent string
}

// SiteScraper fetches a company homepage via net/http and converts it to
// bounded plaintext. One GET per call; there is no crawl and no fallback
// provider.
type SiteScraper struct {
	client    *http.Client
	maxChars  int
	userAgent string
}

// NewSiteScraper creates a SiteScraper with the given options.
func NewSiteScraper(opts Options) *SiteScraper {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 2000
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	return &SiteScraper{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
			},
		},
		maxChars:  opts.MaxChars,
		userAgent: opts.UserAgent,
	}
}

// FetchPage fetches the domain's homepage, strips HTML to plaintext, and
// truncates to the configured character budget. Transport failures and
// non-2xx statuses come back as errors; callers fold them into the
// intelligence snapshot rather than propagating.
func (s *SiteScraper) FetchPage(ctx context.Context, domain string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalizeURL(domain), nil)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: create request for %s", domain)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: fetch %s", domain)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", eris.Wrapf(err, "scrape: read body from %s", domain)
	}

	if resp.StatusCode >= 400 {
		statusErr := eris.Errorf("scrape: %s returned status %d", domain, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return "", statusErr
	}

	text := stripHTML(string(body))
	if text == "" {
		return "", eris.Errorf("scrape: %s returned no text content", domain)
	}

	return truncate(text, s.maxChars), nil
}

// normalizeURL prefixes https:// when the domain carries no scheme.
func normalizeURL(domain string) string {
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// truncate caps text at n characters without splitting a rune.
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// stripHTML removes script/style/nav/header/footer blocks, strips tags,
// decodes entities, and collapses whitespace. The result is plaintext
// suitable for prompt embedding.
func stripHTML(html string) string {
	// Remove non-content blocks entirely.
	for _, tag := range []string{"script", "style", "nav", "header", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	// Strip remaining HTML tags.
	tagRe := regexp.MustCompile(`<[^>]+>`)
	html = tagRe.ReplaceAllString(html, " ")

	// Decode common HTML entities.
	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	// Collapse runs of spaces and blank lines.
	spaceRe := regexp.MustCompile(`[ \t]+`)
	html = spaceRe.ReplaceAllString(html, " ")

	nlRe := regexp.MustCompile(`\s*\n\s*`)
	html = nlRe.ReplaceAllString(html, "\n")

	return strings.TrimSpace(html)
}
