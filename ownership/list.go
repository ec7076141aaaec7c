// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ownership

import (
	"sort"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/product"
)

// Ownership - list the products a participant currently holds
type Ownership interface {
	ListProductsFor(ownerId string, start int, count int) ([]*product.Product, error)
}

type ownership struct {
	ledger   *ledger.Ledger
	products *product.Store
}

// New - ownership lists derived from the participant index
func New(l *ledger.Ledger, products *product.Store) Ownership {
	return &ownership{
		ledger:   l,
		products: products,
	}
}

// ListProductsFor - fetch a page of products owned by a participant
//
// every product a participant ever touched appears in its ledger
// records; only those whose snapshot names it as owner are returned,
// ordered by product id
func (o *ownership) ListProductsFor(ownerId string, start int, count int) ([]*product.Product, error) {
	if start < 0 || count <= 0 {
		return nil, fault.ErrInvalidAmount
	}

	records, err := o.ledger.QueryByParticipant(ownerId)
	if nil != err {
		return nil, err
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ProductId]; ok {
			continue
		}
		seen[r.ProductId] = struct{}{}
		ids = append(ids, r.ProductId)
	}
	sort.Strings(ids)

	owned := make([]*product.Product, 0, count)
	n := 0
loop:
	for _, id := range ids {
		p, err := o.products.Get(id)
		if fault.IsErrNotFound(err) {
			continue loop
		}
		if nil != err {
			return nil, err
		}
		if p.OwnerId != ownerId {
			continue loop
		}
		if n >= start {
			owned = append(owned, p)
			if len(owned) >= count {
				break loop
			}
		}
		n += 1
	}
	return owned, nil
}
