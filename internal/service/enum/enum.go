package enum

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Site interface {
	Parse(body []byte) (*goquery.Document, error)
	TypeURL(typeCode string) string
	YearLinks(doc *goquery.Document) []string
	DocumentPaths(doc *goquery.Document) []string
	PaginationLinks(doc *goquery.Document) []string
	DocumentURL(href string) string
}

// EnumeratorService discovers year index URLs per type and document
// data-page URLs per year.
type EnumeratorService struct {
	fetcher Fetcher
	site    Site
	log     *slog.Logger
}

func NewEnumeratorService(fetcher Fetcher, site Site, log *slog.Logger) *EnumeratorService {
	return &EnumeratorService{
		fetcher: fetcher,
		site:    site,
		log:     log.With(slog.String("item", "EnumeratorService")),
	}
}

// Years discovers the year index URLs one type publishes. An absent
// timeline region yields an empty result: a type with no published
// content is a valid terminal state, not an error.
func (s *EnumeratorService) Years(ctx context.Context, typeCode string) ([]string, error) {
	body, err := s.fetcher.Fetch(ctx, s.site.TypeURL(typeCode))
	if err != nil {
		return nil, fmt.Errorf("cannot fetch type index %s: %w", typeCode, err)
	}

	doc, err := s.site.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("cannot parse type index %s: %w", typeCode, err)
	}

	years := s.site.YearLinks(doc)
	s.log.Debug("Enumerated years", slog.String("type", typeCode), slog.Int("count", len(years)))

	return years, nil
}

// Documents walks every listing page of one year, first the year URL
// itself and then each distinct pagination link, merging the table
// hrefs into one set. The result is the deduplicated document
// data-page URLs in sorted order.
func (s *EnumeratorService) Documents(ctx context.Context, yearURL string) ([]string, error) {
	hrefs := make(map[string]struct{})

	doc, err := s.fetchListing(ctx, yearURL, hrefs)
	if err != nil {
		return nil, err
	}

	for _, pageURL := range s.site.PaginationLinks(doc) {
		// The nav may carry a self link; the start page was already read.
		if pageURL == yearURL {
			continue
		}

		if _, err := s.fetchListing(ctx, pageURL, hrefs); err != nil {
			return nil, err
		}
	}

	urls := make([]string, 0, len(hrefs))
	for href := range hrefs {
		urls = append(urls, s.site.DocumentURL(href))
	}
	sort.Strings(urls)

	s.log.Debug("Enumerated documents", slog.String("year_url", yearURL), slog.Int("count", len(urls)))

	return urls, nil
}

func (s *EnumeratorService) fetchListing(ctx context.Context, pageURL string, hrefs map[string]struct{}) (*goquery.Document, error) {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch listing %s: %w", pageURL, err)
	}

	doc, err := s.site.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("cannot parse listing %s: %w", pageURL, err)
	}

	for _, href := range s.site.DocumentPaths(doc) {
		hrefs[href] = struct{}{}
	}

	return doc, nil
}
