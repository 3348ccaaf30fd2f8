package imagesearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	thumbnailPrefix = "https://encrypted-tbn0.gstatic.com/images?q="
	maxCandidates   = 5
	maxPageBytes    = 4 << 20
)

var thumbnailPattern = regexp.MustCompile(`"(https://encrypted-tbn0\.gstatic\.com/images\?q=[^"]+)"`)

// ScraperConfig holds image results page settings
type ScraperConfig struct {
	SearchURL string
	UserAgent string
}

// Scraper picks a thumbnail from a public image search results page
type Scraper struct {
	cfg    ScraperConfig
	client *http.Client
	pick   func(n int) int
	logger *zap.Logger
}

// NewScraper creates the scraping tier
func NewScraper(cfg ScraperConfig, client *http.Client, logger *zap.Logger) *Scraper {
	if cfg.SearchURL == "" {
		cfg.SearchURL = "https://www.google.com/search"
	}
	return &Scraper{
		cfg:    cfg,
		client: client,
		pick:   rand.IntN,
		logger: logger.Named("image-scraper"),
	}
}

// WithPicker replaces the random index source
func (s *Scraper) WithPicker(pick func(n int) int) *Scraper {
	s.pick = pick
	return s
}

// Name returns the tier name
func (s *Scraper) Name() string {
	return "scrape"
}

// Resolve fetches the results page and returns one of the first thumbnails at random
func (s *Scraper) Resolve(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("tbm", "isch")
	params.Set("q", foodQuery(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image search page: %w", err)
	}

	candidates := ExtractThumbnails(page)
	if len(candidates) == 0 {
		s.logger.Debug("No thumbnails found", zap.String("title", title))
		return "", nil
	}

	n := min(len(candidates), maxCandidates)
	return candidates[s.pick(n)], nil
}

// ExtractThumbnails collects thumbnail URLs from quoted strings in the raw
// markup, then from <img> src and data-src attributes, de-duplicated in order.
func ExtractThumbnails(page []byte) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	for _, m := range thumbnailPattern.FindAllSubmatch(page, -1) {
		add(string(m[1]))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return out
	}
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range []string{"src", "data-src"} {
			if v, ok := sel.Attr(attr); ok && strings.HasPrefix(v, thumbnailPrefix) {
				add(v)
			}
		}
	})
	return out
}
