// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/supplyledger/counter"
)

func TestCounter(t *testing.T) {

	var c1 counter.Counter

	assert.True(t, c1.IsZero(), "zero at start")

	c1.Increment()
	c1.Increment()
	assert.Equal(t, uint64(2), c1.Uint64(), "after increments")

	assert.Equal(t, uint64(12), c1.Add(10), "after add")
	assert.False(t, c1.IsZero(), "not zero")
}

func TestConcurrentIncrement(t *testing.T) {

	var c counter.Counter

	var wg sync.WaitGroup
	for i := 0; i < 50; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j += 1 {
				c.Increment()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(5000), c.Uint64(), "all increments counted")
}
