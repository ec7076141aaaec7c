// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle

import (
	"github.com/bitmark-inc/supplyledger/consensus"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/product"
)

// Product - current state of a product
func (m *Machine) Product(productId string) (*product.Product, error) {
	unlock := m.locks.Lock(productId)
	defer unlock()
	return m.load(productId)
}

// History - ledger records of a product, newest first
func (m *Machine) History(productId string) ([]*ledger.Record, error) {
	return m.ledger.QueryByProduct(productId)
}

// ParticipantHistory - ledger records a participant took part in, newest first
func (m *Machine) ParticipantHistory(participantId string) ([]*ledger.Record, error) {
	if _, err := m.roleOf(participantId); nil != err {
		return nil, err
	}
	return m.ledger.QueryByParticipant(participantId)
}

// Consensus - verification consensus of a product
func (m *Machine) Consensus(productId string) (*consensus.Result, error) {
	p, err := m.Product(productId)
	if nil != err {
		return nil, err
	}
	return m.engine.Consensus(p)
}

// Verifications - stored verifications of a product, oldest first
func (m *Machine) Verifications(productId string) ([]*consensus.Verification, error) {
	if _, err := m.Product(productId); nil != err {
		return nil, err
	}
	return m.engine.Verifications(productId)
}
