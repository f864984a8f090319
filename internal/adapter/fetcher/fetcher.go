package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/jgivc/legmirror/internal/common"
	"github.com/jgivc/legmirror/internal/config"
)

// RateLimitedFetcher issues spaced requests against the legislation
// site and classifies responses. A single limiter is shared by every
// caller, so the minimum inter-request interval holds globally no
// matter how many workers fetch through it.
type RateLimitedFetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	markers *config.Markers

	log *slog.Logger
}

func New(cfg *config.SiteConfig, log *slog.Logger) *RateLimitedFetcher {
	client := resty.New()
	client.SetTimeout(time.Duration(cfg.RequestTimeout))
	client.SetHeader("user-agent", cfg.UserAgent)

	return &RateLimitedFetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Duration(cfg.RequestDelay)), 1),
		markers: &cfg.Markers,
		log:     log.With(slog.String("item", "RateLimitedFetcher")),
	}
}

// Fetch downloads url once the rate gate opens and returns the raw
// body. The status code alone is not trusted: the site serves several
// of its error pages with status 200, so the body markers decide.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("cannot fetch %s: %w", url, err)
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		f.log.Warn("Transport error", slog.String("url", url), slog.Any("error", err))

		return nil, fmt.Errorf("cannot fetch %s: %w", url, err)
	}

	body := resp.Body()
	text := string(body)

	switch {
	case resp.StatusCode() == http.StatusInternalServerError,
		resp.StatusCode() != http.StatusOK,
		f.hasMarker(text, f.markers.Unavailable):
		f.log.Warn("Soft failure", slog.String("url", url), slog.Int("status", resp.StatusCode()))

		return nil, fmt.Errorf("cannot fetch %s: %w", url, common.ErrSoftFailure)
	case f.hasMarker(text, f.markers.NotFound):
		f.log.Warn("Page not found", slog.String("url", url))

		return nil, fmt.Errorf("cannot fetch %s: %w", url, common.ErrPageNotFound)
	case f.hasMarker(text, f.markers.InvalidRequest):
		f.log.Warn("Invalid request", slog.String("url", url))

		return nil, fmt.Errorf("cannot fetch %s: %w", url, common.ErrInvalidRequest)
	}

	return body, nil
}

func (f *RateLimitedFetcher) hasMarker(text, marker string) bool {
	return marker != "" && strings.Contains(text, marker)
}
