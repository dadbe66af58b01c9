package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Changes within this window are coalesced into a single delivery, so an
// editor that truncates and then writes does not trigger a rebuild per syscall.
const debounceWindow = 250 * time.Millisecond

// Watcher watches a single shader source file and delivers its full contents
// on Sources after each detected change. The file does not have to exist yet;
// creating it later counts as a change.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	sources chan string
	done    chan struct{}
}

// New starts watching path. The watch is installed on the parent directory
// because editors often replace the file on save, which would drop a watch
// installed on the file itself.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:    abs,
		fsw:     fsw,
		sources: make(chan string, 1),
		done:    make(chan struct{}),
	}
	go w.loop()

	return w, nil
}

// Sources returns the channel on which changed shader source is delivered.
// Receives never block the watcher; if the consumer lags, only the latest
// content is kept.
func (w *Watcher) Sources() <-chan string {
	return w.sources
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Remove is ignored: the current pipeline stays until the
			// file comes back with a Create or Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}
		case <-fire:
			timer = nil
			fire = nil
			w.publish()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Shader watcher error: %v", err)
		}
	}
}

// publish reads the watched file and hands its contents to the consumer,
// replacing any pending unread delivery.
func (w *Watcher) publish() {
	src, err := os.ReadFile(w.path)
	if err != nil {
		// The file may be gone mid-edit; the next Create re-arms the reload.
		log.Printf("Failed to read %s: %v", w.path, err)
		return
	}

	select {
	case <-w.sources:
	default:
	}
	w.sources <- string(src)
}

// Close stops the watcher goroutine and releases the fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
