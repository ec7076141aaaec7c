// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/supplyledger/reservoir"
)

// Assembler - periodic block assembly in the background
type Assembler struct {
	log      *logger.L
	pool     reservoir.Pool
	interval chan time.Duration
	current  time.Duration
}

// NewAssembler - assemble the pool every interval
func NewAssembler(log *logger.L, pool reservoir.Pool, interval time.Duration) *Assembler {
	return &Assembler{
		log:      log,
		pool:     pool,
		interval: make(chan time.Duration, 1),
		current:  interval,
	}
}

// SetInterval - change the delay of a running assembler
func (a *Assembler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-a.interval:
	default:
	}
	select {
	case a.interval <- d:
	default:
	}
}

// Run - background loop
func (a *Assembler) Run(args interface{}, shutdown <-chan struct{}) {
	log := a.log
	log.Infof("starting…  interval: %s", a.current)

	ticker := time.NewTicker(a.current)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case d := <-a.interval:
			ticker.Stop()
			ticker = time.NewTicker(d)
			a.current = d
			log.Infof("interval: %s", d)
		case <-ticker.C:
			if 0 == a.pool.Count() {
				continue loop
			}
			if _, err := a.pool.Assemble(); nil != err {
				log.Errorf("assemble error: %s", err)
			}
		}
	}
	ticker.Stop()
	log.Info("stopped")
}
