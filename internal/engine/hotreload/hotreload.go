// Package hotreload recompiles shader passes when their source files change.
//
// A background goroutine forwards file system events into a channel. The
// frame thread drains it with Poll at a frame boundary, so passes are only
// ever touched from the thread that owns the GPU context.
package hotreload

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/material"
	"github.com/Faultbox/prism/internal/logger"
)

// Watcher tracks the shader files of passes.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
	closed  sync.Once
	err     error

	// Owned by the frame thread.
	passes map[string][]*material.Pass
	dirs   map[string]bool
}

// New starts a watcher.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fs:      fsw,
		changes: make(chan string, 64),
		done:    make(chan struct{}),
		passes:  make(map[string][]*material.Pass),
		dirs:    make(map[string]bool),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// Editors often save by rename, so Create counts as a change.
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			select {
			case w.changes <- filepath.Clean(ev.Name):
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Track watches the shader files of p. Passes without files are ignored.
func (w *Watcher) Track(p *material.Pass) error {
	for _, f := range p.Files() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", f, err)
		}
		// Watch the directory: atomic saves replace the file inode.
		dir := filepath.Dir(abs)
		if !w.dirs[dir] {
			if err := w.fs.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
			w.dirs[dir] = true
		}
		w.passes[abs] = append(w.passes[abs], p)
	}
	return nil
}

// Poll reloads passes whose files changed since the last call and returns
// how many reloaded. A pass that fails to compile keeps its old program.
func (w *Watcher) Poll() int {
	dirty := make(map[*material.Pass]bool)
	var order []*material.Pass
	for {
		select {
		case path := <-w.changes:
			for _, p := range w.passes[path] {
				if !dirty[p] {
					dirty[p] = true
					order = append(order, p)
				}
			}
			continue
		default:
		}
		break
	}

	reloaded := 0
	for _, p := range order {
		if err := p.Reload(); err != nil {
			logger.Warn("shader reload failed, keeping previous program",
				zap.String("material", p.Material().Name()),
				zap.String("pass", p.Name()),
				zap.Error(err),
			)
			continue
		}
		reloaded++
	}
	return reloaded
}

// Close stops the watcher goroutine. Later calls return the first result.
func (w *Watcher) Close() error {
	w.closed.Do(func() {
		close(w.done)
		w.err = w.fs.Close()
		w.wg.Wait()
	})
	return w.err
}
