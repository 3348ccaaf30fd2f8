package imagesearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func thumb(id string) string {
	return thumbnailPrefix + "tbn:" + id
}

func TestExtractThumbnails(t *testing.T) {
	page := fmt.Sprintf(`<html><head><script>var data=["%s",1,"%s"];</script></head>
<body>
<img src="%s">
<img data-src="%s" src="data:image/gif;base64,R0lGOD">
<img src="https://example.com/logo.png">
</body></html>`, thumb("a"), thumb("b"), thumb("a"), thumb("c"))

	assert.Equal(t, []string{thumb("a"), thumb("b"), thumb("c")}, ExtractThumbnails([]byte(page)))
	assert.Empty(t, ExtractThumbnails([]byte("<html><body>no results</body></html>")))
}

func TestScraperPicksAmongFirstFive(t *testing.T) {
	var markup strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&markup, `<img src="%s">`, thumb(fmt.Sprint(i)))
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isch", r.URL.Query().Get("tbm"))
		assert.Equal(t, "Masala Dosa food", r.URL.Query().Get("q"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome/91")
		_, _ = w.Write([]byte(markup.String()))
	}))
	defer server.Close()

	var bound int
	scraper := NewScraper(ScraperConfig{
		SearchURL: server.URL,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}, server.Client(), zaptest.NewLogger(t)).WithPicker(func(n int) int {
		bound = n
		return n - 1
	})

	link, err := scraper.Resolve(context.Background(), "Masala Dosa")
	require.NoError(t, err)
	assert.Equal(t, 5, bound)
	assert.Equal(t, thumb("4"), link)
}

func TestScraperFewCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<img src="%s"><img src="%s">`, thumb("x"), thumb("y"))
	}))
	defer server.Close()

	var bound int
	scraper := NewScraper(ScraperConfig{SearchURL: server.URL}, server.Client(), zaptest.NewLogger(t)).
		WithPicker(func(n int) int { bound = n; return 0 })

	link, err := scraper.Resolve(context.Background(), "Idli")
	require.NoError(t, err)
	assert.Equal(t, 2, bound)
	assert.Equal(t, thumb("x"), link)
}

func TestScraperNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Our systems have detected unusual traffic</body></html>"))
	}))
	defer server.Close()

	link, err := NewScraper(ScraperConfig{SearchURL: server.URL}, server.Client(), zaptest.NewLogger(t)).
		Resolve(context.Background(), "Idli")
	require.NoError(t, err)
	assert.Empty(t, link)
}

func TestScraperStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewScraper(ScraperConfig{SearchURL: server.URL}, server.Client(), zaptest.NewLogger(t)).
		Resolve(context.Background(), "Idli")
	assert.Error(t, err)
}
