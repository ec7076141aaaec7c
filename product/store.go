// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package product

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/storage"
)

const keyPrefix = "product:"

// Store - product snapshots
type Store struct {
	handle storage.Handle
}

// NewStore - snapshots kept in the given handle
func NewStore(handle storage.Handle) *Store {
	return &Store{
		handle: handle,
	}
}

// Key - storage key of a product snapshot
func Key(productId string) string {
	return keyPrefix + productId
}

// Get - read the persisted snapshot
func (s *Store) Get(productId string) (*Product, error) {
	buffer, err := s.handle.Get(Key(productId))
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.ErrProductNotFound
	}
	p := &Product{}
	if err := json.Unmarshal(buffer, p); nil != err {
		return nil, errors.Wrapf(err, "product: %s", productId)
	}
	if nil == p.Metadata {
		p.Metadata = Metadata{}
	}
	return p, nil
}

// Put - write the snapshot
func (s *Store) Put(p *Product) error {
	if err := p.Validate(); nil != err {
		return err
	}
	buffer, err := json.Marshal(p)
	if nil != err {
		return err
	}
	return s.handle.Put(Key(p.Id), buffer)
}

// Exists - check for a snapshot
func (s *Store) Exists(productId string) (bool, error) {
	return s.handle.Has(Key(productId))
}
