package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/briefing-cli/internal/resilience"
)

func TestSiteScraper_StripsChrome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`<html><head><title>Acme Corp</title><style>body{color:red}</style></head>
<body><nav>Menu</nav><header>Site Header</header><h1>Welcome</h1>
<p>We build great products.</p><script>alert('hi')</script>
<footer>Copyright 2024</footer></body></html>`))
	}))
	defer srv.Close()

	s := NewSiteScraper(Options{})
	text, err := s.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Welcome")
	assert.Contains(t, text, "great products")
	// Nav, header, footer, script, and style blocks should be stripped.
	assert.NotContains(t, text, "Menu")
	assert.NotContains(t, text, "Site Header")
	assert.NotContains(t, text, "Copyright 2024")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color:red")
}

func TestSiteScraper_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`<html><body><p>Some page content</p></body></html>`))
	}))
	defer srv.Close()

	s := NewSiteScraper(Options{UserAgent: "BriefingBot-Test/1.0"})
	_, err := s.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "BriefingBot-Test/1.0", gotUA)
}

func TestSiteScraper_Truncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("word ", 200) + "</p></body></html>"))
	}))
	defer srv.Close()

	s := NewSiteScraper(Options{MaxChars: 50})
	text, err := s.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, []rune(text), 50)
}

func TestSiteScraper_HTTP404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`<html><body>Not found</body></html>`))
	}))
	defer srv.Close()

	s := NewSiteScraper(Options{})
	_, err := s.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.False(t, resilience.IsTransient(err))
}

func TestSiteScraper_HTTP503Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer srv.Close()

	s := NewSiteScraper(Options{})
	_, err := s.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.True(t, resilience.IsTransient(err))
}

func TestSiteScraper_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`<html><body><nav>only chrome</nav></body></html>`))
	}))
	defer srv.Close()

	s := NewSiteScraper(Options{})
	_, err := s.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestSiteScraper_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`<html><body><p>slow content</p></body></html>`))
	}))
	defer srv.Close()

	s := NewSiteScraper(Options{Timeout: 20 * time.Millisecond})
	_, err := s.FetchPage(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestSiteScraper_UnresolvableDomain(t *testing.T) {
	s := NewSiteScraper(Options{Timeout: 2 * time.Second})
	_, err := s.FetchPage(context.Background(), "nonexistent-xyz.invalid")
	assert.Error(t, err)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", normalizeURL("example.com"))
	assert.Equal(t, "https://example.com", normalizeURL("https://example.com"))
	assert.Equal(t, "http://example.com", normalizeURL("http://example.com"))
}

func TestTruncate_RuneSafe(t *testing.T) {
	text := strings.Repeat("é", 10) // multi-byte runes
	assert.Equal(t, strings.Repeat("é", 4), truncate(text, 4))
	assert.Equal(t, text, truncate(text, 10))
	assert.Equal(t, text, truncate(text, 100))
}

func TestStripHTML_Basic(t *testing.T) {
	input := `<html><head><style>body{color:red}</style></head>
<body><script>alert('hi')</script><h1>Hello</h1><p>World &amp; friends</p></body></html>`
	result := stripHTML(input)
	assert.Contains(t, result, "Hello")
	assert.Contains(t, result, "World & friends")
	assert.NotContains(t, result, "alert")
	assert.NotContains(t, result, "color:red")
	assert.NotContains(t, result, "<h1>")
}

func TestStripHTML_Entities(t *testing.T) {
	input := `&lt;tag&gt; &amp; &quot;quoted&quot; &#39;apos&#39; &nbsp;space`
	result := stripHTML(input)
	assert.Contains(t, result, `<tag>`)
	assert.Contains(t, result, `& "quoted"`)
	assert.Contains(t, result, `'apos'`)
}

func TestStripHTML_WhitespaceCollapse(t *testing.T) {
	input := "Hello     world\n\n\n\n\nfoo"
	result := stripHTML(input)
	assert.NotContains(t, result, "     ")
	assert.NotContains(t, result, "\n\n\n")
}
