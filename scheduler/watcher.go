package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a new upload must sit untouched before it is
// treated as fully written. Browser uploads land in one write but larger
// recordings can stream in chunks.
const settleDelay = 2 * time.Second

// ProcessFunc handles one uploaded recording. ownerID is resolved by the
// caller; the watcher only knows the meeting ID from the filename.
type ProcessFunc func(ctx context.Context, meetingID, path string)

// UploadWatcher watches a drop directory for finished recordings. Files are
// named <meetingID>.<ext>; anything else is ignored.
type UploadWatcher struct {
	dir     string
	process ProcessFunc
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewUploadWatcher(dir string, process ProcessFunc) (*UploadWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &UploadWatcher{dir: dir, process: process, watcher: w, done: make(chan struct{})}, nil
}

// Start consumes filesystem events until Stop is called.
func (u *UploadWatcher) Start() {
	log.Printf("[Watcher] watching %s for recording uploads", u.dir)
	go u.loop()
}

func (u *UploadWatcher) Stop() {
	u.watcher.Close()
	<-u.done
}

func (u *UploadWatcher) loop() {
	defer close(u.done)
	for {
		select {
		case ev, ok := <-u.watcher.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				go u.handle(ev.Name)
			}
		case err, ok := <-u.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Watcher] %v", err)
		}
	}
}

func (u *UploadWatcher) handle(path string) {
	meetingID, ok := meetingIDFromPath(path)
	if !ok {
		log.Printf("[Watcher] ignoring %s: not a recording upload", filepath.Base(path))
		return
	}
	if !waitForSettle(path) {
		log.Printf("[Watcher] upload %s vanished before settling", filepath.Base(path))
		return
	}
	log.Printf("[Watcher] recording for meeting %s uploaded: %s", meetingID, path)
	u.process(context.Background(), meetingID, path)
}

// meetingIDFromPath extracts the meeting ID from an upload filename.
// Dotfiles and extensionless files are rejected.
func meetingIDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || strings.HasPrefix(base, ".") {
		return "", false
	}
	id := strings.TrimSuffix(base, ext)
	if id == "" {
		return "", false
	}
	return id, true
}

// waitForSettle polls until the file size stops changing.
func waitForSettle(path string) bool {
	var lastSize int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Size() == lastSize {
			return true
		}
		lastSize = info.Size()
		time.Sleep(settleDelay)
	}
}
