package archive

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/jgivc/legmirror/internal/config"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// archiveStorage persists harvested documents under
// <data_dir>/<category>/<type>/. A file already on disk is the record
// that its document was downloaded; no other index exists.
type archiveStorage struct {
	fs  afero.Fs
	cfg *config.ArchiveConfig
	log *slog.Logger
}

func NewArchiveStorage(cfg *config.ArchiveConfig, log *slog.Logger) *archiveStorage {
	return NewArchiveStorageWithFS(afero.NewOsFs(), cfg, log)
}

func NewArchiveStorageWithFS(fs afero.Fs, cfg *config.ArchiveConfig, log *slog.Logger) *archiveStorage {
	return &archiveStorage{
		fs:  fs,
		cfg: cfg,
		log: log.With(slog.String("item", "ArchiveStorage")),
	}
}

func (s *archiveStorage) EnsureDir(category, typeCode string) error {
	if err := s.fs.MkdirAll(s.typeDir(category, typeCode), dirPerm); err != nil {
		return fmt.Errorf("cannot create type dir: %w", err)
	}

	return nil
}

func (s *archiveStorage) Exists(category, typeCode, fileName string) bool {
	_, err := s.fs.Stat(filepath.Join(s.typeDir(category, typeCode), fileName))

	return err == nil
}

func (s *archiveStorage) Save(category, typeCode, fileName string, content []byte) error {
	path := filepath.Join(s.typeDir(category, typeCode), fileName)

	if err := afero.WriteFile(s.fs, path, content, filePerm); err != nil {
		return fmt.Errorf("cannot write document %s: %w", path, err)
	}

	return nil
}

// WriteErrorLog replaces the type's error file with one URL per line.
func (s *archiveStorage) WriteErrorLog(category, typeCode string, urls []string) error {
	if err := s.EnsureDir(category, typeCode); err != nil {
		return err
	}

	path := filepath.Join(s.typeDir(category, typeCode), s.cfg.ErrorFileName)

	if err := afero.WriteFile(s.fs, path, []byte(strings.Join(urls, "\n")), filePerm); err != nil {
		return fmt.Errorf("cannot write error log %s: %w", path, err)
	}

	s.log.Info("Wrote error log", slog.String("path", path), slog.Int("count", len(urls)))

	return nil
}

func (s *archiveStorage) typeDir(category, typeCode string) string {
	return filepath.Join(s.cfg.DataDir, category, typeCode)
}
