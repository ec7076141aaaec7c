// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reservoir

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
)

// Source - where unconfirmed records come from
type Source interface {
	Unconfirmed() ([]*ledger.Record, error)
}

// Reconciler - background resubmission of unconfirmed records
type Reconciler struct {
	log      *logger.L
	gateway  *Gateway
	source   Source
	limiter  *rate.Limiter
	interval chan time.Duration
	current  time.Duration
}

// Report - outcome of one reconciliation pass
type Report struct {
	Unconfirmed int `json:"unconfirmed"`
	Submitted   int `json:"submitted"`
	Pending     int `json:"alreadyPending"`
	Failed      int `json:"failed"`
}

// NewReconciler - resubmit at most perSecond records per second
func NewReconciler(log *logger.L, gateway *Gateway, source Source, interval time.Duration, perSecond float64, burst int) *Reconciler {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Reconciler{
		log:      log,
		gateway:  gateway,
		source:   source,
		limiter:  rate.NewLimiter(limit, burst),
		interval: make(chan time.Duration, 1),
		current:  interval,
	}
}

// SetInterval - change the delay between passes of a running reconciler
func (r *Reconciler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case r.interval <- d:
	default:
		// replace a change not yet picked up
		select {
		case <-r.interval:
		default:
		}
		select {
		case r.interval <- d:
		default:
		}
	}
}

// Pass - one sweep over the unconfirmed records
//
// returns early, with the partial report, when shutdown is closed
func (r *Reconciler) Pass(shutdown <-chan struct{}) (*Report, error) {
	records, err := r.source.Unconfirmed()
	if nil != err {
		return nil, err
	}

	report := &Report{
		Unconfirmed: len(records),
	}

loop:
	for _, record := range records {
		reservation := r.limiter.Reserve()
		if !reservation.OK() {
			break loop
		}
		if delay := reservation.Delay(); delay > 0 {
			select {
			case <-shutdown:
				reservation.Cancel()
				break loop
			case <-time.After(delay):
			}
		}

		_, err := r.gateway.submit(record)
		switch {
		case nil == err:
			report.Submitted += 1
		case fault.IsErrExists(err):
			report.Pending += 1
		default:
			report.Failed += 1
			r.log.Warnf("reconcile: record: %s  error: %s", record.Id, err)
		}
	}

	if report.Submitted > 0 || report.Failed > 0 {
		r.log.Infof("reconcile: unconfirmed: %d  submitted: %d  pending: %d  failed: %d",
			report.Unconfirmed, report.Submitted, report.Pending, report.Failed)
	}
	return report, nil
}

// Run - background loop
func (r *Reconciler) Run(args interface{}, shutdown <-chan struct{}) {
	log := r.log
	log.Infof("starting…  interval: %s", r.current)

	ticker := time.NewTicker(r.current)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case d := <-r.interval:
			ticker.Stop()
			ticker = time.NewTicker(d)
			r.current = d
			log.Infof("interval: %s", d)
		case <-ticker.C:
			if _, err := r.Pass(shutdown); nil != err {
				log.Errorf("reconcile error: %s", err)
			}
		}
	}
	ticker.Stop()
	log.Info("stopped")
}
