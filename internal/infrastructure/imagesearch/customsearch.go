// Package imagesearch provides the web image lookup tiers used when
// generative imaging is unavailable
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// CustomSearchConfig holds Google Custom Search settings
type CustomSearchConfig struct {
	Key      string
	CX       string
	Endpoint string
}

// CustomSearch looks up the first image result of the Custom Search JSON API
type CustomSearch struct {
	cfg    CustomSearchConfig
	client *http.Client
	logger *zap.Logger
}

// NewCustomSearch creates the keyed image search tier
func NewCustomSearch(cfg CustomSearchConfig, client *http.Client, logger *zap.Logger) *CustomSearch {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://www.googleapis.com/customsearch/v1"
	}
	return &CustomSearch{
		cfg:    cfg,
		client: client,
		logger: logger.Named("custom-search"),
	}
}

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// Name returns the tier name
func (s *CustomSearch) Name() string {
	return "custom-search"
}

// Resolve returns the first image link for "<title> food", or "" when there is none
func (s *CustomSearch) Resolve(ctx context.Context, title string) (string, error) {
	if s.cfg.Key == "" || s.cfg.CX == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("q", foodQuery(title))
	params.Set("cx", s.cfg.CX)
	params.Set("key", s.cfg.Key)
	params.Set("searchType", "image")
	params.Set("num", "1")
	params.Set("safe", "active")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("custom search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("custom search returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode custom search response: %w", err)
	}

	for _, item := range result.Items {
		if link := strings.TrimSpace(item.Link); link != "" {
			return link, nil
		}
	}
	s.logger.Debug("No custom search results", zap.String("title", title))
	return "", nil
}

func foodQuery(title string) string {
	return strings.TrimSpace(title) + " food"
}
