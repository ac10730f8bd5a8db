package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the document from path whenever the file is written, and
// passes each reload's outcome to fn. It watches the parent directory so
// editors that replace the file on save are followed. Watch blocks until
// ctx is done.
func (s *Session) Watch(ctx context.Context, path string, fn func(*Update, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("session: watch: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("session: watch %s: %w", path, err)
	}
	s.log.Info("watching document", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			s.log.Debug("document changed on disk", zap.Stringer("op", ev.Op))
			u, err := s.Load(ctx, target)
			if fn != nil {
				fn(u, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watch error", zap.Error(err))
		}
	}
}
