package sqlschema

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// WatchFunc receives the reloaded schema and its validation result every
// time the watched document changes. On a reload failure, schema and
// result are nil and err carries the cause; the watcher keeps running.
type WatchFunc func(s *Schema, result *ValidationResult, err error)

// Watcher watches a YAML schema document and reloads plus revalidates it
// on every change.
type Watcher struct {
	path string
	opts []Option
	fn   WatchFunc
	fw   *fsnotify.Watcher

	closeOnce sync.Once
	done      chan struct{}
}

// Watch starts watching the schema document at path. The callback is
// invoked once with the initial load, then again on every write to the
// file. Close must be called to release the watcher.
func Watch(path string, fn WatchFunc, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path: path,
		opts: opts,
		fn:   fn,
		fw:   fw,
		done: make(chan struct{}),
	}
	w.reload()
	go w.loop()
	return w, nil
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fw.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.matches(ev) {
				continue
			}
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.fn(nil, nil, err)
		}
	}
}

func (w *Watcher) matches(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	s, err := ReadDocument(w.path, w.opts...)
	if err != nil {
		w.fn(nil, nil, err)
		return
	}
	w.fn(s, s.Validate(), nil)
}
