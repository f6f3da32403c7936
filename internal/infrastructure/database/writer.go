package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taskmaster/tasks/internal/infrastructure/logger"
)

// writer owns the backing file. Snapshots are written by a single goroutine;
// when several are queued before it wakes up only the newest is written.
type writer struct {
	path   string
	logger *logger.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	pending  []byte
	queued   uint64
	written  uint64
	err      error
	writes   uint64
	failures uint64
	last     time.Time
	stopped  bool

	kick chan struct{}
	done chan struct{}
	exit chan struct{}
	once sync.Once
}

func newWriter(path string, log *logger.Logger) *writer {
	w := &writer{
		path:   path,
		logger: log,
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exit:   make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

func (w *writer) enqueue(data []byte) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		w.logger.Warnw("Dropping write after close", "path", w.path)
		return
	}
	w.pending = data
	w.queued++
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *writer) loop() {
	defer close(w.exit)
	for {
		select {
		case <-w.kick:
			w.writePending()
		case <-w.done:
			w.writePending()
			return
		}
	}
}

func (w *writer) writePending() {
	w.mu.Lock()
	if w.written == w.queued {
		w.mu.Unlock()
		return
	}
	data, gen := w.pending, w.queued
	w.pending = nil
	w.mu.Unlock()

	start := time.Now()
	err := writeFile(w.path, data)
	w.logger.LogStoreWrite(w.path, len(data), float64(time.Since(start).Nanoseconds())/1000000, err)

	w.mu.Lock()
	w.written = gen
	w.err = err
	if err != nil {
		w.failures++
	} else {
		w.writes++
		w.last = time.Now()
	}
	w.cond.Broadcast()
	w.mu.Unlock()
}

// flush waits for everything queued so far.
func (w *writer) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	target := w.queued
	for w.written < target && !w.stopped {
		w.cond.Wait()
	}
	return w.err
}

func (w *writer) close() error {
	w.once.Do(func() {
		close(w.done)
		<-w.exit

		w.mu.Lock()
		w.stopped = true
		w.cond.Broadcast()
		w.mu.Unlock()
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *writer) closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

func (w *writer) lastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *writer) stats() (writes, failures uint64, last time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes, w.failures, w.last
}

// writeFile replaces path with data through a temp file and a rename, so a
// reader never sees a half written document.
func writeFile(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
