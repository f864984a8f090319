package enum

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivc/legmirror/internal/adapter/fetcher"
	"github.com/jgivc/legmirror/internal/adapter/siteadapter"
	"github.com/jgivc/legmirror/internal/config"
)

type fakeSite struct {
	mu    sync.Mutex
	hits  map[string]int
	pages map[string]string

	srv *httptest.Server
}

func newFakeSite(t *testing.T, pages map[string]string) *fakeSite {
	t.Helper()

	fs := &fakeSite{
		hits:  make(map[string]int),
		pages: pages,
	}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		fs.mu.Lock()
		fs.hits[key]++
		fs.mu.Unlock()

		page, ok := fs.pages[key]
		if !ok {
			http.NotFound(w, r)

			return
		}

		w.Write([]byte(page))
	}))
	t.Cleanup(fs.srv.Close)

	return fs
}

func (fs *fakeSite) hitCount(key string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.hits[key]
}

func newService(t *testing.T, baseURL string) *EnumeratorService {
	t.Helper()

	siteCfg := config.Default().Site
	siteCfg.BaseURL = baseURL
	siteCfg.RequestDelay = config.Duration(time.Millisecond)
	siteCfg.RequestTimeout = config.Duration(time.Second)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	site, err := siteadapter.New(baseURL)
	require.NoError(t, err)

	return NewEnumeratorService(fetcher.New(&siteCfg, log), site, log)
}

func TestYears(t *testing.T) {
	fs := newFakeSite(t, map[string]string{
		"/ukpga": `<html><body><div id="timelineData">
			<a href="/ukpga/2020">2020</a>
			<a href="/ukpga/2019">2019</a>
			<a href="/ukpga/2020-02-11">shortcut</a>
		</div></body></html>`,
	})

	s := newService(t, fs.srv.URL)

	years, err := s.Years(context.Background(), "ukpga")
	require.NoError(t, err)

	assert.Equal(t, []string{fs.srv.URL + "/ukpga/2020", fs.srv.URL + "/ukpga/2019"}, years)
}

func TestYearsMissingTimelineIsNotAnError(t *testing.T) {
	fs := newFakeSite(t, map[string]string{
		"/mwa": `<html><body><p>no published content</p></body></html>`,
	})

	s := newService(t, fs.srv.URL)

	years, err := s.Years(context.Background(), "mwa")
	require.NoError(t, err)
	assert.Empty(t, years)
}

func TestYearsFetchFailurePropagates(t *testing.T) {
	fs := newFakeSite(t, map[string]string{})

	s := newService(t, fs.srv.URL)

	_, err := s.Years(context.Background(), "ukpga")
	require.Error(t, err)
}

func TestDocumentsSinglePage(t *testing.T) {
	fs := newFakeSite(t, map[string]string{
		"/ukpga/2020": `<html><body><div id="content"><table>
			<tr><td><a href="/ukpga/2020/2">Act two</a></td></tr>
			<tr><td><a href="/ukpga/2020/1">Act one</a></td></tr>
		</table></div></body></html>`,
	})

	s := newService(t, fs.srv.URL)

	docs, err := s.Documents(context.Background(), fs.srv.URL+"/ukpga/2020")
	require.NoError(t, err)

	assert.Equal(t, []string{
		fs.srv.URL + "/ukpga/2020/1/data.html",
		fs.srv.URL + "/ukpga/2020/2/data.html",
	}, docs)
}

func TestDocumentsPaginated(t *testing.T) {
	fs := newFakeSite(t, map[string]string{
		"/ukpga/2020": `<html><body>
			<div id="content"><table>
				<tr><td><a href="/ukpga/2020/1">Act one</a></td></tr>
				<tr><td><a href="/ukpga/2020/2">Act two</a></td></tr>
			</table></div>
			<div class="prevPagesNextNav">
				<a href="/ukpga/2020">1</a>
				<a href="/ukpga/2020?page=2">2</a>
				<a href="/ukpga/2020?page=2">Next</a>
			</div>
		</body></html>`,
		"/ukpga/2020?page=2": `<html><body>
			<div id="content"><table>
				<tr><td><a href="/ukpga/2020/2">Act two again</a></td></tr>
				<tr><td><a href="/ukpga/2020/3">Act three</a></td></tr>
			</table></div>
		</body></html>`,
	})

	s := newService(t, fs.srv.URL)

	docs, err := s.Documents(context.Background(), fs.srv.URL+"/ukpga/2020")
	require.NoError(t, err)

	assert.Equal(t, []string{
		fs.srv.URL + "/ukpga/2020/1/data.html",
		fs.srv.URL + "/ukpga/2020/2/data.html",
		fs.srv.URL + "/ukpga/2020/3/data.html",
	}, docs)

	// Every listing page is fetched exactly once: the self link and
	// the duplicated page 2 link must not trigger extra requests.
	assert.Equal(t, 1, fs.hitCount("/ukpga/2020"))
	assert.Equal(t, 1, fs.hitCount("/ukpga/2020?page=2"))
}

func TestDocumentsListingFailurePropagates(t *testing.T) {
	fs := newFakeSite(t, map[string]string{})

	s := newService(t, fs.srv.URL)

	_, err := s.Documents(context.Background(), fs.srv.URL+"/ukpga/2020")
	require.Error(t, err)
}
