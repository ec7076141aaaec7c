// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle

import (
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
)

// details keys written on create, verify and stock records, read back when a
// product has to be rebuilt from its records
const (
	detailName        = "name"
	detailDescription = "description"
	detailQuantity    = "quantity"
	detailPrice       = "price"

	detailQualityScore        = product.KeyQualityScore
	detailAverageQualityScore = "averageQualityScore"
)

// load - the stored product, rebuilt from the ledger if the snapshot
// is missing
//
// must hold the product lock
func (m *Machine) load(productId string) (*product.Product, error) {
	p, err := m.products.Get(productId)
	if nil == err {
		return p, nil
	}
	if !fault.IsErrNotFound(err) {
		return nil, err
	}

	records, err := m.ledger.QueryByProduct(productId)
	if nil != err {
		return nil, err
	}
	if 0 == len(records) {
		return nil, fault.ErrProductNotFound
	}

	p = reconstruct(productId, records, m.lowStockThreshold())
	m.log.Warnf("product: %s  snapshot missing, rebuilt from %d records  owner: %s  status: %s", productId, len(records), p.OwnerId, p.Status)

	if err := m.products.Put(p); nil != err {
		m.log.Errorf("product: %s  rebuilt snapshot write error: %s", productId, err)
	}
	return p, nil
}

// reconstruct - placeholder product from records, newest first
func reconstruct(productId string, records []*ledger.Record, lowStock int64) *product.Product {
	p := &product.Product{
		Id:            productId,
		Status:        product.Created,
		Metadata:      product.Metadata{},
		Reconstructed: true,
	}

	// replay oldest first
	for i := len(records) - 1; i >= 0; i -= 1 {
		r := records[i]

		if 0 == p.CreatedAt {
			p.CreatedAt = r.Timestamp
		}
		if r.Timestamp > p.UpdatedAt {
			p.UpdatedAt = r.Timestamp
		}
		if r.ResultingStatus.IsLifecycle() {
			p.Status = r.ResultingStatus
		}

		switch r.ActionType {
		case ledger.Create:
			p.CreatorId = r.ToParticipantId
			p.OwnerId = r.ToParticipantId
			if s, ok := r.Details[detailName].(string); ok {
				p.Name = s
			}
			if s, ok := r.Details[detailDescription].(string); ok {
				p.Description = s
			}
			if score, ok := number(r.Details[detailQualityScore]); ok {
				initial := score
				p.InitialQualityScore = &initial
				p.Metadata.SetQualityScore(score)
				replayScore(p, score, r.ToRole, r.ToParticipantId, r.Timestamp)
			}
		case ledger.Transfer, ledger.Sell:
			p.OwnerId = r.ToParticipantId
		case ledger.Verify:
			if score, ok := number(r.Details[detailQualityScore]); ok {
				replayScore(p, score, r.FromRole, r.FromParticipantId, r.Timestamp)
			}
			if average, ok := number(r.Details[detailAverageQualityScore]); ok {
				p.Metadata.SetQualityScore(average)
			}
		}

		if q, ok := integer(r.Details[detailQuantity]); ok && q >= 0 {
			p.Quantity = q
		}
		if f, ok := r.Details[detailPrice].(float64); ok && f >= 0 {
			p.Price = f
		}
	}

	if "" == p.OwnerId {
		// no create record survived: the newest participant holds it
		p.OwnerId = records[0].ToParticipantId
		if "" == p.OwnerId {
			p.OwnerId = records[0].FromParticipantId
		}
	}
	p.StockStatus = product.StockStatusFor(p.Quantity, lowStock)
	return p
}

// add a quality history entry; a malformed history is left alone
func replayScore(p *product.Product, score float64, r role.Role, participantId string, timestamp int64) {
	_ = p.Metadata.AppendHistory(product.QualityEntry{
		Score:         score,
		Role:          r,
		ParticipantId: participantId,
		Timestamp:     timestamp,
	})
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func integer(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), float64(int64(n)) == n
	}
	return 0, false
}
