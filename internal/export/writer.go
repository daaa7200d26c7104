package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/summon-almanac/internal/consolidate"
	"github.com/Veraticus/summon-almanac/internal/model"
)

// Output file names.
const (
	EventFile   = "event_data.json"
	BannerFile  = "banner_data.json"
	ServantFile = "servant_data.json"
)

// DebugFile returns the debug dump name for a region.
func DebugFile(region model.Region) string {
	return fmt.Sprintf("summon_data_%s.json", strings.ToLower(string(region)))
}

// Writer writes export files into one directory.
type Writer struct {
	logger *slog.Logger
	dir    string
}

// NewWriter creates a writer for dir, creating it if needed.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// WriteAll writes the debug dump of every store and the three combined files.
func (w *Writer) WriteAll(servants []model.Servant, stores ...*consolidate.Store) error {
	for _, s := range stores {
		if err := w.write(DebugFile(s.Region()), DebugEvents(s)); err != nil {
			return err
		}
	}
	if err := w.write(EventFile, EventRecords(stores...)); err != nil {
		return err
	}
	if err := w.write(BannerFile, BannerRecords(stores...)); err != nil {
		return err
	}
	return w.write(ServantFile, ServantRecords(servants, stores...))
}

// WriteJSON writes v to name inside the output directory.
func (w *Writer) WriteJSON(name string, v any) error {
	return w.write(name, v)
}

// write encodes v with two-space indentation and leaves non-ASCII text and
// HTML characters unescaped. The file is replaced atomically.
func (w *Writer) write(name string, v any) error {
	tmp, err := os.CreateTemp(w.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close() //nolint:errcheck,gosec // encode error wins
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.logger.Info("wrote export file", "path", path)
	return nil
}
