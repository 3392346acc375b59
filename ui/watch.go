package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/leolalee/library/reader"
)

type (
	settingsReloadedMsg  struct{ settings reader.Settings }
	settingsReloadErrMsg struct{ err error }
)

// configWatcher reports changes to the config file.
type configWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func newConfigWatcher(path string) *configWatcher {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
		return nil
	}

	// Editors often replace the file, so watch its directory.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		log.Error("error adding dir to fsnotify watcher", "error", err)
		_ = w.Close()
		return nil
	}

	log.Info("fsnotify watching dir", "dir", dir)
	return &configWatcher{path: filepath.Clean(path), watcher: w}
}

// wait blocks until the config file is written, then reloads it.
func (w *configWatcher) wait(load func() (reader.Settings, error)) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				s, err := load()
				if err != nil {
					return settingsReloadErrMsg{err}
				}
				return settingsReloadedMsg{s}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				log.Debug("fsnotify error", "file", w.path, "error", err)
			}
		}
	}
}

func (w *configWatcher) close() {
	if err := w.watcher.Close(); err != nil {
		log.Debug("fsnotify close", "error", err)
	}
}
