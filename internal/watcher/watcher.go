// Package watcher auto-ingests plain text files dropped into a
// directory. Create and write events re-ingest the file; remove and
// rename events purge its chunks.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/logger"
)

// textExtensions are the file types the watcher ingests. Binary
// formats need extraction outside the core and are ignored here.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Watcher ties a directory to the ingest pipeline.
type Watcher struct {
	ingest    driving.IngestService
	documents driving.DocumentService
	dir       string
}

// New creates a watcher over dir.
func New(ingest driving.IngestService, documents driving.DocumentService, dir string) *Watcher {
	return &Watcher{ingest: ingest, documents: documents, dir: dir}
}

// Run ingests the files already present, then blocks processing
// filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.ingestExisting(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// ingestExisting processes files already in the directory.
func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.ingestFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !textExtensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		w.ingestFile(ctx, event.Name)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		id := DocumentID(event.Name)
		if err := w.documents.Purge(ctx, id); err != nil {
			logger.Debug("Purge %s: %v", id, err)
			return
		}
		logger.Info("Purged %s", id)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	if !textExtensions[strings.ToLower(filepath.Ext(path))] {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Read %s: %v", path, err)
		return
	}

	id := DocumentID(path)
	report, err := w.ingest.Ingest(ctx, id, path, string(data))
	if err != nil {
		logger.Warn("Ingest %s: %v", id, err)
		return
	}
	logger.Info("Ingested %s: %d chunks (%d embedded, %d pending)",
		id, report.Chunks, report.Embedded, report.Failed)
}

// DocumentID derives a stable document identifier from a file path:
// the base name without extension. Re-writing the same file re-ingests
// the same document rather than accumulating copies.
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
