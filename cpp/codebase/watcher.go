package codebase

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dhamidi/csense/config"
)

// Watcher feeds file-system changes under a root directory into the store so
// documents edited outside the editor get rebuilt.
type Watcher struct {
	codebase *Codebase
	cfg      *config.Config
	rootDir  string
	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewWatcher(codebase *Codebase, cfg *config.Config, rootDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		codebase: codebase,
		cfg:      cfg,
		rootDir:  rootDir,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	if err := w.watchRecursively(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) Stop() {
	close(w.stopCh)
	w.fsw.Close()
	<-w.doneCh
}

// watchRecursively registers dir and every directory below it. Hidden
// directories are skipped; there is nothing completable inside .git.
func (w *Watcher) watchRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Debugf("cannot watch %s: %s", path, err.Error())
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher: %s", err.Error())
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchRecursively(event.Name); err != nil {
				log.Debugf("cannot watch new directory %s: %s", event.Name, err.Error())
			}
			return
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !w.cfg.Matches(event.Name) {
		return
	}
	log.Debugf("external change: %s", event.Name)
	if err := w.codebase.OnExternalChange(event.Name); err != nil {
		log.Errorf("rebuild after external change %s: %s", event.Name, err.Error())
	}
}
