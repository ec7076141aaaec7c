// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared setup for package tests
package fixtures

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/storage"
)

// LogCategory - tag used by test loggers
const LogCategory = "testing"

var logDirectory string

// SetupTestLogger - send all log output to a temporary directory
//
// call once from TestMain
func SetupTestLogger() {
	dir, err := ioutil.TempDir("", "supplyledger-test")
	if nil != err {
		panic(fmt.Sprintf("temporary log directory: %s", err))
	}
	logDirectory = dir

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "trace",
		},
	}

	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialization failed: %s", err))
	}
}

// TeardownTestLogger - flush and remove the log directory
func TeardownTestLogger() {
	logger.Finalise()
	if "" != logDirectory {
		os.RemoveAll(logDirectory)
	}
}

// NewStore - an empty in-memory database
func NewStore() *storage.DB {
	db, err := storage.OpenMemory(logger.New(LogCategory))
	if nil != err {
		panic(fmt.Sprintf("memory database: %s", err))
	}
	return db
}

// ErrInjected - the failure returned by a FaultyStore
var ErrInjected = errors.New("injected storage failure")

// FaultyStore - wraps a handle and fails writes of selected keys
type FaultyStore struct {
	storage.Handle

	sync.Mutex
	failPrefixes []string
}

// NewFaultyStore - wrap a handle
func NewFaultyStore(h storage.Handle) *FaultyStore {
	return &FaultyStore{
		Handle: h,
	}
}

// FailPuts - subsequent writes to keys with any of these prefixes fail
func (f *FaultyStore) FailPuts(prefixes ...string) {
	f.Lock()
	f.failPrefixes = append([]string(nil), prefixes...)
	f.Unlock()
}

// Heal - stop injecting failures
func (f *FaultyStore) Heal() {
	f.FailPuts()
}

// Put - fail or forward
func (f *FaultyStore) Put(key string, value []byte) error {
	f.Lock()
	prefixes := f.failPrefixes
	f.Unlock()

	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return errors.Wrapf(ErrInjected, "put: %q", key)
		}
	}
	return f.Handle.Put(key, value)
}
