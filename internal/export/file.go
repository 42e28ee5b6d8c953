package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
)

// FileExporter writes cards as PNG files in a directory. Files are written under a temporary name and renamed into
// place, so a partially written card is never visible at the final path.
type FileExporter struct {
	dir string
	log *zap.SugaredLogger
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{
		dir: dir,
		log: zap.S().Named("export").With("dir", dir),
	}
}

func (e *FileExporter) Export(ctx context.Context, name string, card *yt2ig.ShareCard) (*Export, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.CreateTemp(e.dir, ".card-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		// No-op once renamed
		_ = os.Remove(f.Name())
	}()
	if err := card.EncodePNG(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write card: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write card: %w", err)
	}
	path := filepath.Join(e.dir, name+".png")
	if err := os.Rename(f.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to write card: %w", err)
	}
	e.log.Infow("exported card", "path", path)
	return newExport(path, card), nil
}
