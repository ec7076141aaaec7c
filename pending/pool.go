// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	gocache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/supplyledger/constants"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/reservoir"
)

// DefaultExpiry - the maximum time a transaction waits for a block
const DefaultExpiry = constants.PendingExpiry

// Confirmer - puts one record into the next block
type Confirmer interface {
	Confirm(recordId string) (*ledger.Linkage, error)
}

// Pool - pending transactions with expiry
type Pool struct {
	log       *logger.L
	confirmer Confirmer
	expiry    time.Duration
	items     *gocache.Cache

	// only one assembly at a time
	assembling sync.Mutex
}

// New - create an empty pool
func New(log *logger.L, confirmer Confirmer, expiry time.Duration) *Pool {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	items := gocache.New(expiry, expiry/2)
	items.OnEvicted(func(hash string, _ interface{}) {
		log.Debugf("removed: %s", hash)
	})
	return &Pool{
		log:       log,
		confirmer: confirmer,
		expiry:    expiry,
		items:     items,
	}
}

// Add - queue a transaction, rejecting one already pending
func (p *Pool) Add(tx *reservoir.Transaction) error {
	if err := tx.Check(); nil != err {
		return err
	}
	if err := p.items.Add(tx.Hash, tx, p.expiry); nil != err {
		return fault.ErrTransactionAlreadyExists
	}
	p.log.Debugf("added: %s  record: %s", tx.Hash, tx.RecordId)
	return nil
}

// Count - number of unexpired transactions
func (p *Pool) Count() int {
	return len(p.items.Items())
}

// Pending - unexpired transactions in assembly order
func (p *Pool) Pending() []*reservoir.Transaction {
	items := p.items.Items()
	list := make([]*reservoir.Transaction, 0, len(items))
	for _, item := range items {
		if tx, ok := item.Object.(*reservoir.Transaction); ok {
			list = append(list, tx)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Timestamp != list[j].Timestamp {
			return list[i].Timestamp < list[j].Timestamp
		}
		return list[i].RecordId < list[j].RecordId
	})
	return list
}

// Assemble - confirm every pending transaction, one block each
//
// stops at the first confirmation error leaving the rest pending
func (p *Pool) Assemble() (*reservoir.Assembly, error) {
	p.assembling.Lock()
	defer p.assembling.Unlock()

	assembly := &reservoir.Assembly{
		Confirmed: []string{},
	}

	for _, tx := range p.Pending() {
		linkage, err := p.confirmer.Confirm(tx.RecordId)
		if fault.IsErrConflict(err) || fault.IsErrNotFound(err) {
			// already in a block or no such record: nothing left to do
			p.log.Warnf("drop: %s  record: %s  reason: %s", tx.Hash, tx.RecordId, err)
			p.items.Delete(tx.Hash)
			continue
		}
		if nil != err {
			p.log.Errorf("assemble: record: %s  error: %s", tx.RecordId, err)
			return assembly, err
		}
		p.items.Delete(tx.Hash)

		if linkage.TransactionHash != tx.Hash {
			p.log.Warnf("record: %s  signed hash: %s  block hash: %s", tx.RecordId, tx.Hash, linkage.TransactionHash)
		}
		assembly.Height = linkage.BlockHeight
		assembly.Confirmed = append(assembly.Confirmed, tx.RecordId)
	}

	if len(assembly.Confirmed) > 0 {
		p.log.Infof("assembled: %d  height: %d", len(assembly.Confirmed), assembly.Height)
	}
	return assembly, nil
}
