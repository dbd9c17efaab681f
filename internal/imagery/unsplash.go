package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gubarz/tripdoc/internal/itinerary"
)

const (
	DefaultUnsplashURL = "https://api.unsplash.com"
	DefaultPhotoSize   = "small"

	maxImageBytes = 10 << 20
)

// UnsplashConfig configures the Unsplash search resolver
type UnsplashConfig struct {
	AccessKey string
	BaseURL   string
	Size      string        // raw, full, regular, small or thumb
	Timeout   time.Duration // per HTTP request
}

// Unsplash resolves queries through the Unsplash photo search API
type Unsplash struct {
	cfg    UnsplashConfig
	client *http.Client
	logger *slog.Logger
}

// NewUnsplash creates a resolver, filling in defaults for empty fields
func NewUnsplash(cfg UnsplashConfig) *Unsplash {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultUnsplashURL
	}
	if cfg.Size == "" {
		cfg.Size = DefaultPhotoSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Unsplash{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for degraded lookups
func (u *Unsplash) WithLogger(l *slog.Logger) *Unsplash {
	u.logger = l
	return u
}

// Resolve returns the first landscape photo for the query, or false
func (u *Unsplash) Resolve(ctx context.Context, query string) ([]byte, bool) {
	data, err := u.fetch(ctx, query)
	if err != nil {
		u.logger.Warn("imagery: no image for stop", "query", query, "error", err)
		return nil, false
	}
	return data, true
}

type searchResponse struct {
	Results []struct {
		URLs map[string]string `json:"urls"`
	} `json:"results"`
}

func (u *Unsplash) fetch(ctx context.Context, query string) ([]byte, error) {
	if u.cfg.AccessKey == "" {
		return nil, fmt.Errorf("%w: no unsplash access key", itinerary.ErrImageUnavailable)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	body, err := u.get(ctx, u.cfg.BaseURL+"/search/photos?"+params.Encode(), true)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: no search results", itinerary.ErrImageUnavailable)
	}

	urls := resp.Results[0].URLs
	photoURL := urls[u.cfg.Size]
	if photoURL == "" {
		photoURL = urls["regular"]
	}
	if photoURL == "" {
		return nil, fmt.Errorf("%w: result has no %s url", itinerary.ErrImageUnavailable, u.cfg.Size)
	}

	return u.get(ctx, photoURL, false)
}

func (u *Unsplash) get(ctx context.Context, rawURL string, authorized bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if authorized {
		req.Header.Set("Authorization", "Client-ID "+u.cfg.AccessKey)
		req.Header.Set("Accept-Version", "v1")
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unsplash status %d", itinerary.ErrImageUnavailable, resp.StatusCode)
	}
	return data, nil
}
