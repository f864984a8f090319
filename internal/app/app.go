package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/jgivc/legmirror/internal/adapter/fetcher"
	"github.com/jgivc/legmirror/internal/adapter/siteadapter"
	"github.com/jgivc/legmirror/internal/config"
	"github.com/jgivc/legmirror/internal/service/enum"
	"github.com/jgivc/legmirror/internal/service/harvest"
	"github.com/jgivc/legmirror/internal/storage/archive"
)

type App struct {
	cfgPath string
}

func New(cfgPath string) *App {
	return &App{cfgPath: cfgPath}
}

func (a *App) Run(ctx context.Context) error {
	cfg := config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo)).With(slog.String("run_id", uuid.NewString()))

	site, err := siteadapter.New(cfg.Site.BaseURL)
	if err != nil {
		return fmt.Errorf("cannot create site adapter: %w", err)
	}

	f := fetcher.New(&cfg.Site, log)
	enumSrv := enum.NewEnumeratorService(f, site, log)
	store := archive.NewArchiveStorage(&cfg.Archive, log)

	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stdout)
	go pw.Render()
	defer pw.Stop()

	harvester := harvest.NewHarvesterService(cfg, enumSrv, f, store, pw, log)

	results, err := harvester.Run(ctx)

	for i, r := range results {
		fmt.Printf("%d. %s/%s: saved: %d, skipped: %d, failed: %d\n",
			i+1, r.Category, r.TypeCode, r.Saved, r.Skipped, len(r.ErrorURLs))
	}

	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	return nil
}
