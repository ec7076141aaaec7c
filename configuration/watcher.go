// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher - re-read the configuration file whenever it changes
//
// the containing directory is watched so that editors which replace
// the file by renaming are still seen
type Watcher struct {
	log       *logger.L
	watcher   *fsnotify.Watcher
	filePath  string
	variables map[string]string
	notify    func(*Configuration)
}

// NewWatcher - notify is called with each successfully parsed configuration
func NewWatcher(log *logger.L, fileName string, variables map[string]string, notify func(*Configuration)) (*Watcher, error) {
	filePath, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(filePath)); nil != err {
		watcher.Close()
		return nil, err
	}

	return &Watcher{
		log:       log,
		watcher:   watcher,
		filePath:  filePath,
		variables: variables,
		notify:    notify,
	}, nil
}

// Run - background process
func (w *Watcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := w.log
	log.Infof("watching: %q", w.filePath)

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			if filepath.Base(event.Name) != filepath.Base(w.filePath) {
				continue loop
			}
			log.Debugf("file event: %v", event)

			if fileRemoved(event) {
				log.Warnf("file: %q removed, keeping current configuration", w.filePath)
				continue loop
			}
			if !fileChanged(event) {
				continue loop
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watcher error: %s", err)
		}
	}

	w.watcher.Close()
	log.Info("stopped")
}

func (w *Watcher) reload() {
	c, err := Get(w.filePath, w.variables)
	if nil != err {
		w.log.Errorf("failed to read configuration from: %q  error: %s", w.filePath, err)
		return
	}
	w.log.Info("configuration changed")
	w.notify(c)
}

func fileRemoved(event fsnotify.Event) bool {
	return event.Op&fsnotify.Remove == fsnotify.Remove ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}

func fileChanged(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}
