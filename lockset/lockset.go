// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package lockset - a fixed set of mutexes selected by key
//
// All updates to one key are serialised while different keys mostly
// proceed in parallel.  Two keys may share a stripe, so a holder must
// never try to take a second stripe from the same set.
package lockset

import (
	"hash/fnv"
	"sync"
)

// DefaultStripes - number of mutexes when none is given
const DefaultStripes = 64

// Set - striped mutexes
type Set struct {
	stripes []sync.Mutex
}

// New - create a set with n stripes
func New(n int) *Set {
	if n <= 0 {
		n = DefaultStripes
	}
	return &Set{
		stripes: make([]sync.Mutex, n),
	}
}

// Lock - acquire the stripe for key and return its unlock function
func (s *Set) Lock(key string) func() {
	m := &s.stripes[s.index(key)]
	m.Lock()
	return m.Unlock
}

func (s *Set) index(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.stripes)))
}
