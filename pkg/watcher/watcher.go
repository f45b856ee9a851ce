package watcher

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Loader interface {
	Load(path string) error
}

type Watcher struct {
	stop chan struct{}
	done chan error
}

// LoadAndWatch loads path once and reloads it whenever the file is written or
// replaced. The parent directory is watched so editors that save by rename
// keep triggering reloads.
func LoadAndWatch(path string, loader Loader, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	err := loader.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load file")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		_ = watcher.Close()
		return nil, errors.Wrap(err, "failed to add directory to watcher")
	}
	target := filepath.Clean(path)
	stop := make(chan struct{})
	done := make(chan error)
	go func() {
		for {
			select {
			case event := <-watcher.Events:
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := loader.Load(path); err != nil {
					logger.Warn("failed to reload file", zap.String("path", path), zap.Error(err))
					continue
				}
				logger.Info("reloaded file", zap.String("path", path))
			case err := <-watcher.Errors:
				logger.Warn("failed to watch file", zap.String("path", path), zap.Error(err))
			case <-stop:
				done <- watcher.Close()
				return
			}
		}
	}()
	return &Watcher{stop: stop, done: done}, nil
}

func (w *Watcher) Close() error {
	close(w.stop)
	return <-w.done
}
