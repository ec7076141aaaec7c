// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/supplyledger/background"
)

// counts passes until shutdown, then records that it returned
type poller struct {
	passes   int64
	returned int32
	label    string
}

func (p *poller) Run(args interface{}, shutdown <-chan struct{}) {
	seen := args.(chan string)
	seen <- p.label

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			atomic.AddInt64(&p.passes, 1)
		}
	}
	atomic.StoreInt32(&p.returned, 1)
}

func TestStartStop(t *testing.T) {
	assembler := &poller{label: "assembler"}
	reconciler := &poller{label: "reconciler"}

	seen := make(chan string, 2)
	p := background.Start(background.Processes{assembler, reconciler}, seen)

	started := map[string]bool{}
	for i := 0; i < 2; i += 1 {
		select {
		case label := <-seen:
			started[label] = true
		case <-time.After(time.Second):
			t.Fatal("process did not start")
		}
	}
	assert.True(t, started["assembler"], "assembler received args")
	assert.True(t, started["reconciler"], "reconciler received args")

	time.Sleep(20 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&assembler.returned), "assembler returned before Stop did")
	assert.Equal(t, int32(1), atomic.LoadInt32(&reconciler.returned), "reconciler returned before Stop did")
	assert.True(t, atomic.LoadInt64(&assembler.passes) > 0, "assembler ran")

	// a second stop must not block or panic
	p.Stop()
}

func TestStopNil(t *testing.T) {
	var p *background.T
	p.Stop()
}
