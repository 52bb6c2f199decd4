package s3blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Archiver uploads a finished run's result files under runs/<run-id>/ so
// batch output survives the worker that produced it.
type Archiver struct {
	writer *Writer
}

// NewArchiver creates an Archiver using the given blob writer.
func NewArchiver(writer *Writer) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveRun uploads each local result file, keyed by its base name. Files
// at or above the multipart threshold go through the upload manager; a full
// season of equity rows crosses it easily.
func (a *Archiver) ArchiveRun(ctx context.Context, runID string, paths []string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("s3blob: open artifact %s: %w", path, err)
		}

		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("s3blob: stat artifact %s: %w", path, err)
		}

		key := fmt.Sprintf("runs/%s/%s", runID, filepath.Base(path))
		if fi.Size() >= minPartSize {
			err = a.writer.PutMultipart(ctx, key, f, minPartSize)
		} else {
			err = a.writer.Put(ctx, key, f, "text/csv")
		}
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("s3blob: archive %s: %w", key, err)
		}
	}
	return nil
}
