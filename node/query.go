// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/bitmark-inc/supplyledger/blockheader"
	"github.com/bitmark-inc/supplyledger/consensus"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/reservoir"
)

// Provenance - a product with its full history
type Provenance struct {
	Product       *product.Product          `json:"product"`
	History       []*ledger.Record          `json:"history"`
	Verifications []*consensus.Verification `json:"verifications"`
	Consensus     *consensus.Result         `json:"consensus"`
}

// Product - current state of a product
func (n *Node) Product(productId string) (*product.Product, error) {
	return n.machine.Product(productId)
}

// Provenance - product, records newest first, verifications and consensus
func (n *Node) Provenance(productId string) (*Provenance, error) {
	p, err := n.machine.Product(productId)
	if nil != err {
		return nil, err
	}
	history, err := n.machine.History(productId)
	if nil != err {
		return nil, err
	}
	verifications, err := n.machine.Verifications(productId)
	if nil != err {
		return nil, err
	}
	result, err := n.machine.Consensus(productId)
	if nil != err {
		return nil, err
	}
	return &Provenance{
		Product:       p,
		History:       history,
		Verifications: verifications,
		Consensus:     result,
	}, nil
}

// ParticipantHistory - records a participant took part in, newest first
func (n *Node) ParticipantHistory(participantId string) ([]*ledger.Record, error) {
	return n.machine.ParticipantHistory(participantId)
}

// Owned - products currently held by a participant
func (n *Node) Owned(ownerId string, start int, count int) ([]*product.Product, error) {
	return n.owners.ListProductsFor(ownerId, start, count)
}

// Transaction - record confirmed under a transaction hash
func (n *Node) Transaction(transactionHash string) (*ledger.Record, error) {
	return n.ledger.GetByTransactionHash(transactionHash)
}

// Record - one ledger record
func (n *Node) Record(recordId string) (*ledger.Record, error) {
	return n.ledger.Get(recordId)
}

// Block - one block of the hash chain
func (n *Node) Block(height uint64) (*blockheader.Block, error) {
	return n.chain.Block(height)
}

// Height - current block height
func (n *Node) Height() uint64 {
	return n.chain.Height()
}

// VerifyChain - recompute every block, returning the number checked
func (n *Node) VerifyChain() (uint64, error) {
	return n.chain.Verify()
}

// PendingCount - transactions waiting for a block
func (n *Node) PendingCount() int {
	return n.gateway.PendingCount()
}

// TriggerAssembly - assemble the pending pool now
func (n *Node) TriggerAssembly() reservoir.Result {
	return n.gateway.TriggerAssembly()
}

// GatewayStats - submission counters
func (n *Node) GatewayStats() reservoir.Stats {
	return n.gateway.Stats()
}

// Reconcile - one immediate pass resubmitting unconfirmed records
func (n *Node) Reconcile() (*reservoir.Report, error) {
	return n.reconciler.Pass(nil)
}
