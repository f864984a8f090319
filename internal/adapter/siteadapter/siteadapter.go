package siteadapter

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	timelineSelector   = "div#timelineData a[href]"
	contentSelector    = "div#content td a[href]"
	paginationSelector = "div.prevPagesNextNav a[href]"

	dataPageSuffix = "/data.html"
)

// SiteAdapter maps the site's markup regions to link sets.
type SiteAdapter struct {
	base *url.URL
}

func New(baseURL string) (*SiteAdapter, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("cannot parse base url: %w", err)
	}

	return &SiteAdapter{base: base}, nil
}

func (a *SiteAdapter) Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cannot parse html: %w", err)
	}

	return doc, nil
}

// TypeURL is the root index page of one legislation type.
func (a *SiteAdapter) TypeURL(typeCode string) string {
	return a.origin() + "/" + typeCode
}

// YearLinks returns absolute year index URLs from the timeline region.
// Hyphenated hrefs are shortcuts to specific documents, not years, and
// are excluded. An absent timeline yields nil.
func (a *SiteAdapter) YearLinks(doc *goquery.Document) []string {
	var links []string

	doc.Find(timelineSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.Contains(href, "-") {
			return
		}

		links = append(links, a.resolve(href))
	})

	return links
}

// DocumentPaths returns the raw collection hrefs found in table cells
// of the listing's content region.
func (a *SiteAdapter) DocumentPaths(doc *goquery.Document) []string {
	var hrefs []string

	doc.Find(contentSelector).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	return hrefs
}

// PaginationLinks returns the deduplicated absolute URLs of the
// listing's pagination nav, empty when the nav is absent.
func (a *SiteAdapter) PaginationLinks(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find(paginationSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}

		abs := a.resolve(href)
		if _, exists := seen[abs]; exists {
			return
		}
		seen[abs] = struct{}{}

		links = append(links, abs)
	})

	return links
}

// DocumentURL maps a relative collection path to its data page.
func (a *SiteAdapter) DocumentURL(href string) string {
	return a.origin() + href + dataPageSuffix
}

func (a *SiteAdapter) origin() string {
	return a.base.Scheme + "://" + a.base.Host
}

func (a *SiteAdapter) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return a.base.ResolveReference(ref).String()
}
