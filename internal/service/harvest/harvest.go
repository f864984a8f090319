package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/jgivc/legmirror/internal/config"
	"github.com/jgivc/legmirror/internal/entity"
	"github.com/jgivc/legmirror/internal/util"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Enumerator interface {
	Years(ctx context.Context, typeCode string) ([]string, error)
	Documents(ctx context.Context, yearURL string) ([]string, error)
}

type ArchiveStorage interface {
	EnsureDir(category, typeCode string) error
	Exists(category, typeCode, fileName string) bool
	Save(category, typeCode, fileName string, content []byte) error
	WriteErrorLog(category, typeCode string, urls []string) error
}

type docResult struct {
	url     string
	saved   bool
	skipped bool
	err     error
}

// HarvesterService drives the category x type x year x document walk.
// All per-type state lives for the duration of that type's run; the
// shared fetcher keeps request spacing global regardless of workers.
type HarvesterService struct {
	categories []entity.Category
	workers    int
	enum       Enumerator
	fetcher    Fetcher
	store      ArchiveStorage
	pw         progress.Writer

	log *slog.Logger
}

func NewHarvesterService(cfg *config.Config, enum Enumerator, fetcher Fetcher,
	store ArchiveStorage, pw progress.Writer, log *slog.Logger) *HarvesterService {
	workers := cfg.Harvester.Workers
	if workers < 1 {
		workers = 1
	}

	categories := make([]entity.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories = append(categories, entity.Category{Name: c.Name, Types: c.Types})
	}

	return &HarvesterService{
		categories: categories,
		workers:    workers,
		enum:       enum,
		fetcher:    fetcher,
		store:      store,
		pw:         pw,
		log:        log.With(slog.String("item", "HarvesterService")),
	}
}

// Run processes every configured (category, type) pair in declaration
// order. A type whose year enumeration fails aborts the run: an
// unreachable type index means a site change or outage the operator
// has to see, not something to skip over.
func (h *HarvesterService) Run(ctx context.Context) ([]entity.TypeResult, error) {
	var results []entity.TypeResult

	for _, category := range h.categories {
		h.log.Info("Process category", slog.String("category", category.Name))

		for _, typeCode := range category.Types {
			result, err := h.processType(ctx, category.Name, typeCode)
			if err != nil {
				return results, fmt.Errorf("cannot process type %s: %w", typeCode, err)
			}

			results = append(results, result)
		}
	}

	return results, nil
}

func (h *HarvesterService) processType(ctx context.Context, category, typeCode string) (entity.TypeResult, error) {
	result := entity.TypeResult{Category: category, TypeCode: typeCode}

	log := h.log.With(slog.String("category", category), slog.String("type", typeCode))
	log.Info("Process type")

	yearURLs, err := h.enum.Years(ctx, typeCode)
	if err != nil {
		log.Error("Cannot enumerate years", slog.Any("error", err))

		return result, err
	}

	var tracker *progress.Tracker
	if h.pw != nil {
		tracker = &progress.Tracker{Message: typeCode, Total: int64(len(yearURLs))}
		h.pw.AppendTracker(tracker)
	}

	for _, yearURL := range yearURLs {
		if err := h.processYear(ctx, category, typeCode, yearURL, &result); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}

			// A failed listing forfeits only this year; its documents
			// are retried by a later run.
			log.Warn("Cannot process year", slog.String("year_url", yearURL), slog.Any("error", err))
			result.ErrorURLs = append(result.ErrorURLs, yearURL)
		}

		if tracker != nil {
			tracker.Increment(1)
		}
	}

	if tracker != nil {
		tracker.MarkAsDone()
	}

	if len(result.ErrorURLs) > 0 {
		if err := h.store.WriteErrorLog(category, typeCode, result.ErrorURLs); err != nil {
			return result, err
		}

		log.Warn("Type finished with failures", slog.Int("count", len(result.ErrorURLs)))
	}

	return result, nil
}

func (h *HarvesterService) processYear(ctx context.Context, category, typeCode, yearURL string, result *entity.TypeResult) error {
	docURLs, err := h.enum.Documents(ctx, yearURL)
	if err != nil {
		return err
	}

	if err := h.store.EnsureDir(category, typeCode); err != nil {
		return err
	}

	year := util.YearLabel(yearURL)

	docs := make([]entity.Document, 0, len(docURLs))
	for _, docURL := range docURLs {
		docs = append(docs, entity.Document{
			URL:      docURL,
			Year:     year,
			FileName: util.DocumentFileName(year, docURL),
		})
	}

	for res := range h.download(ctx, category, typeCode, docs) {
		switch {
		case res.err != nil:
			// Document failures never abort sibling work, the URL is
			// kept for the type's error log instead.
			h.log.Warn("Cannot download document", slog.String("url", res.url), slog.Any("error", res.err))
			result.ErrorURLs = append(result.ErrorURLs, res.url)
		case res.skipped:
			result.Skipped++
		default:
			result.Saved++
		}
	}

	return ctx.Err()
}

func (h *HarvesterService) download(ctx context.Context, category, typeCode string, docs []entity.Document) chan docResult {
	in := make(chan entity.Document, len(docs))
	out := make(chan docResult, len(docs))

	for _, doc := range docs {
		in <- doc
	}
	close(in)

	var wg sync.WaitGroup
	wg.Add(h.workers)
	for n := 0; n < h.workers; n++ {
		go h.worker(ctx, n, category, typeCode, in, out, &wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (h *HarvesterService) worker(ctx context.Context, n int, category, typeCode string,
	in chan entity.Document, out chan docResult, wg *sync.WaitGroup) {
	defer wg.Done()

	log := h.log.With(slog.Int("worker_id", n))

	for doc := range in {
		if ctx.Err() != nil {
			return
		}

		// An existing file is the download record: skip without a
		// network call, which is what makes re-runs resumable.
		if h.store.Exists(category, typeCode, doc.FileName) {
			log.Debug("Skip existing document", slog.String("file", doc.FileName))
			out <- docResult{url: doc.URL, skipped: true}

			continue
		}

		content, err := h.fetcher.Fetch(ctx, doc.URL)
		if err != nil {
			out <- docResult{url: doc.URL, err: err}

			continue
		}

		if err := h.store.Save(category, typeCode, doc.FileName, content); err != nil {
			log.Error("Cannot save document", slog.String("url", doc.URL), slog.Any("error", err))
			out <- docResult{url: doc.URL, err: err}

			continue
		}

		out <- docResult{url: doc.URL, saved: true}
	}
}
