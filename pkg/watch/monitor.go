// Package watch keeps a status report fresh by watching the working
// directory for checkpoint file changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/primestat/primestat/pkg/logger"
	"github.com/primestat/primestat/pkg/scandir"
)

// Monitor watches a working directory and invokes OnChange when checkpoint
// files change.  Changes are coalesced to at most one callback per poll
// interval.
type Monitor struct {
	Dir      string
	Interval time.Duration
	OnChange func()
}

// New returns a Monitor for dir with a one-second poll interval.
func New(dir string, onChange func()) *Monitor {
	return &Monitor{Dir: dir, Interval: time.Second, OnChange: onChange}
}

// Run watches until ctx is canceled.  fsnotify supplies events where the
// platform supports it; a directory-modtime poll covers the rest.  A
// missing or unreadable directory degrades to no callbacks, never a
// failure.
func (m *Monitor) Run(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		err = watcher.Add(m.Dir)
		if err == nil {
			defer func() {
				_ = watcher.Close()
			}()
		} else {
			logger.Warning("Could not watch %s, falling back to polling: %s.", m.Dir, err)
			_ = watcher.Close()
			watcher = nil
		}
	} else {
		logger.Warning("Could not create directory watcher, falling back to polling: %s.", err)
		watcher = nil
	}

	fi, err := os.Stat(m.Dir)
	if err != nil {
		fi = nil
	}

	var watcherEvents chan fsnotify.Event
	if watcher == nil {
		watcherEvents = make(chan fsnotify.Event)
	} else {
		watcherEvents = watcher.Events
	}

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-watcherEvents:
			if !scandir.IsBackupName(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				dirty = true
			}
		case <-time.After(m.Interval):
			if watcher == nil {
				newFi, err := os.Stat(m.Dir)
				if err == nil && (fi == nil || fi.ModTime() != newFi.ModTime()) {
					fi = newFi
					dirty = true
				}
			}
			if dirty {
				dirty = false
				m.OnChange()
			}
		}
	}
}
