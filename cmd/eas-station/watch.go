/*
NAME
  watch.go

DESCRIPTION
  watch.go watches the loaded configuration file for changes and logs a
  notice so an operator knows to restart the station to pick them up.
  The continuous monitor, broadcaster, and GPIO controller are
  constructed once at startup from a fixed Config; reloading them live
  mid-alert risks tearing down a pin activation or an in-progress scan,
  so a full process restart is the supported path.

AUTHOR
  New: fsnotify is the standard ecosystem choice for file-change
  notification in a long-running Go daemon.
*/

package main

import (
	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/utils/logging"
)

// watchConfigFile logs a notice whenever path is written to. It returns
// immediately; the watcher goroutine runs until the process exits.
func watchConfigFile(path string, l logging.Logger) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		l.Warning("eas-station: could not start config file watcher", "error", err)
		return
	}
	if err := w.Add(path); err != nil {
		l.Warning("eas-station: could not watch config file", "path", path, "error", err)
		w.Close()
		return
	}

	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					l.Info("eas-station: configuration file changed on disk, restart to apply", "path", ev.Name)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.Warning("eas-station: config file watcher error", "error", err)
			}
		}
	}()
}
