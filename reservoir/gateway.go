// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reservoir

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/counter"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
)

//go:generate mockgen -destination=../mocks/pool.go -package=mocks github.com/bitmark-inc/supplyledger/reservoir Pool

// Pool - what the block assembler must provide
type Pool interface {
	Add(tx *Transaction) error
	Count() int
	Assemble() (*Assembly, error)
}

// Assembly - outcome of one assembly run
type Assembly struct {
	Height    uint64   `json:"height"`
	Confirmed []string `json:"confirmed"`
}

// Result - reply to an assembly request
type Result struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Height    uint64   `json:"height"`
	Confirmed []string `json:"confirmed"`
}

// Stats - gateway counters
type Stats struct {
	Submitted uint64 `json:"submitted"`
	Failed    uint64 `json:"failed"`
	Pending   int    `json:"pending"`
}

// Gateway - signs records and queues them for the next block
type Gateway struct {
	log    *logger.L
	signer Signer
	pool   Pool

	submitted counter.Counter
	failed    counter.Counter
}

// New - create a gateway; a nil pool makes every submission fail
func New(log *logger.L, signer Signer, pool Pool) *Gateway {
	return &Gateway{
		log:    log,
		signer: signer,
		pool:   pool,
	}
}

// Enqueue - hand a signed transaction to the pool
func (g *Gateway) Enqueue(tx *Transaction) (string, error) {
	if nil == g.pool {
		return "", fault.ErrPoolUnavailable
	}
	if err := tx.Check(); nil != err {
		return "", err
	}
	if err := g.pool.Add(tx); nil != err {
		return "", err
	}
	return tx.Hash, nil
}

// Submit - sign and enqueue a freshly appended record
//
// errors are logged and counted, never returned
func (g *Gateway) Submit(record *ledger.Record) {
	if _, err := g.submit(record); nil != err {
		g.failed.Increment()
		g.log.Warnf("submit: record: %s  error: %s", record.Id, err)
	}
}

func (g *Gateway) submit(record *ledger.Record) (string, error) {
	if nil == g.signer {
		return "", errors.Wrap(fault.ErrSigningFailed, "no signer")
	}
	tx, err := NewTransaction(g.signer, record)
	if nil != err {
		return "", errors.Wrap(fault.ErrSigningFailed, err.Error())
	}
	hash, err := g.Enqueue(tx)
	if nil != err {
		return "", err
	}
	g.submitted.Increment()
	g.log.Debugf("submit: record: %s  hash: %s", record.Id, hash)
	return hash, nil
}

// PendingCount - number of transactions waiting for a block
func (g *Gateway) PendingCount() int {
	if nil == g.pool {
		return 0
	}
	return g.pool.Count()
}

// TriggerAssembly - ask the pool to build blocks now
func (g *Gateway) TriggerAssembly() Result {
	if nil == g.pool {
		return Result{
			Success: false,
			Message: fault.ErrPoolUnavailable.Error(),
		}
	}
	assembly, err := g.pool.Assemble()
	if nil != err {
		g.log.Errorf("assembly error: %s", err)
		return Result{
			Success: false,
			Message: err.Error(),
		}
	}
	return Result{
		Success:   true,
		Message:   fmt.Sprintf("confirmed %d transactions", len(assembly.Confirmed)),
		Height:    assembly.Height,
		Confirmed: assembly.Confirmed,
	}
}

// Stats - current counters
func (g *Gateway) Stats() Stats {
	return Stats{
		Submitted: g.submitted.Uint64(),
		Failed:    g.failed.Uint64(),
		Pending:   g.PendingCount(),
	}
}
