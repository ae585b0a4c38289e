package daemon

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 2 * time.Second

// watchSessions watches every agent's sessions directory and signals the
// returned channel after writes settle. Agents appearing after startup are
// picked up by the interval poll; the watcher is an accelerator, not the
// source of truth.
func watchSessions(ctx context.Context, sessionsDir string) <-chan struct{} {
	wakeup := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("agentspend daemon: session watcher unavailable: %v", err)
		return wakeup
	}

	added := 0
	entries, _ := os.ReadDir(sessionsDir)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(sessionsDir, e.Name(), "sessions")
		if err := watcher.Add(dir); err == nil {
			added++
		}
	}
	if added == 0 {
		_ = watcher.Close()
		return wakeup
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.Contains(ev.Name, ".jsonl") {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Debounce: agents write in bursts.
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
					timerC = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(watchDebounce)
				}
			case <-timerC:
				timer = nil
				timerC = nil
				select {
				case wakeup <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("agentspend daemon: watcher error: %v", err)
			}
		}
	}()

	return wakeup
}
