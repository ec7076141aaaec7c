// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle

import (
	"math"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/product"
)

// StockIn - add received units
func (m *Machine) StockIn(productId string, actorId string, amount int64, details map[string]interface{}) (*Outcome, error) {
	if amount <= 0 {
		return nil, fault.ErrInvalidAmount
	}
	return m.stock(productId, actorId, ledger.StockIn, details, func(quantity int64) (int64, error) {
		if amount > math.MaxInt64-quantity {
			return 0, fault.ErrInvalidAmount
		}
		return quantity + amount, nil
	})
}

// StockOut - remove units, never below zero
func (m *Machine) StockOut(productId string, actorId string, amount int64, details map[string]interface{}) (*Outcome, error) {
	if amount <= 0 {
		return nil, fault.ErrInvalidAmount
	}
	return m.stock(productId, actorId, ledger.StockOut, details, func(quantity int64) (int64, error) {
		if quantity < amount {
			return 0, fault.ErrInsufficientStock
		}
		return quantity - amount, nil
	})
}

// StockAdjust - set the quantity after a count
func (m *Machine) StockAdjust(productId string, actorId string, quantity int64, details map[string]interface{}) (*Outcome, error) {
	if quantity < 0 {
		return nil, fault.ErrInvalidQuantity
	}
	return m.stock(productId, actorId, ledger.StockAdjust, details, func(int64) (int64, error) {
		return quantity, nil
	})
}

func (m *Machine) stock(productId string, actorId string, action ledger.ActionType, details map[string]interface{}, next func(int64) (int64, error)) (*Outcome, error) {
	actorRole, err := m.roleOf(actorId)
	if nil != err {
		return nil, err
	}

	unlock := m.locks.Lock(productId)
	defer unlock()

	p, err := m.load(productId)
	if nil != err {
		return nil, err
	}
	if product.Recalled == p.Status {
		return nil, fault.ErrProductRecalled
	}
	if p.OwnerId != actorId {
		return nil, fault.ErrNotOwner
	}

	quantity, err := next(p.Quantity)
	if nil != err {
		return nil, err
	}

	previous := p.Quantity
	p.Quantity = quantity
	p.StockStatus = product.StockStatusFor(quantity, m.lowStockThreshold())

	recordDetails := copyDetails(details)
	recordDetails["previousQuantity"] = previous
	recordDetails[detailQuantity] = quantity
	recordDetails["stockStatus"] = string(p.StockStatus)

	return m.commit(p, &ledger.Record{
		FromParticipantId: actorId,
		FromRole:          actorRole,
		ActionType:        action,
		Timestamp:         m.timestamp(p),
		Details:           recordDetails,
	})
}
