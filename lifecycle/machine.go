// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle

import (
	"encoding/json"
	"sync/atomic"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/consensus"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/lockset"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
)

// Submitter - receives every appended record
type Submitter interface {
	Submit(record *ledger.Record)
}

// Machine - applies actions to products
type Machine struct {
	lowStock  int64 // atomic, first for 64 bit alignment
	log       *logger.L
	directory role.Directory
	products  *product.Store
	ledger    *ledger.Ledger
	engine    *consensus.Engine
	gateway   Submitter
	locks     *lockset.Set
	now       func() int64
}

// New - create a machine; a nil gateway disables submission
func New(
	log *logger.L,
	directory role.Directory,
	products *product.Store,
	l *ledger.Ledger,
	engine *consensus.Engine,
	gateway Submitter,
	lowStockThreshold int64,
) *Machine {
	if lowStockThreshold < 0 {
		lowStockThreshold = product.DefaultLowStockThreshold
	}
	return &Machine{
		log:       log,
		directory: directory,
		products:  products,
		ledger:    l,
		engine:    engine,
		gateway:   gateway,
		locks:     lockset.New(lockset.DefaultStripes),
		lowStock:  lowStockThreshold,
		now:       ledger.NowMillis,
	}
}

// SetLowStockThreshold - used for stock status from the next action on
func (m *Machine) SetLowStockThreshold(threshold int64) {
	if threshold >= 0 {
		atomic.StoreInt64(&m.lowStock, threshold)
	}
}

func (m *Machine) lowStockThreshold() int64 {
	return atomic.LoadInt64(&m.lowStock)
}

// next timestamp for a product, strictly after its last update so
// that records of one product never share a timestamp
func (m *Machine) timestamp(p *product.Product) int64 {
	ts := m.now()
	if nil != p && ts <= p.UpdatedAt {
		ts = p.UpdatedAt + 1
	}
	return ts
}

// roleOf - registered role of a participant
func (m *Machine) roleOf(participantId string) (role.Role, error) {
	r, err := m.directory.RoleOf(participantId)
	if nil != err {
		return role.Unknown, err
	}
	if !r.Valid() {
		return role.Unknown, fault.ErrParticipantNotRegistered
	}
	return r, nil
}

// commit - persist the product then its ledger record, then submit
//
// must hold the product lock
func (m *Machine) commit(p *product.Product, record *ledger.Record) (*Outcome, error) {
	p.Touch(record.Timestamp)
	record.ProductId = p.Id
	record.ResultingStatus = p.Status
	details, err := normaliseDetails(record.Details)
	if nil != err {
		return nil, err
	}
	record.Details = details

	if err := m.products.Put(p); nil != err {
		m.log.Errorf("%s: product: %s  write error: %s", record.ActionType, p.Id, err)
		return nil, err
	}

	if _, err := m.ledger.Append(record); nil != err {
		m.log.Criticalf("%s: product: %s  %s: %s", record.ActionType, p.Id, fault.ErrUnbackedProductState, err)
		return nil, errors.Wrapf(fault.ErrUnbackedProductState, "product: %s: %s", p.Id, err)
	}

	if nil != m.gateway {
		m.gateway.Submit(record)
	}

	m.log.Infof("%s: product: %s  status: %s  record: %s", record.ActionType, p.Id, p.Status, record.Id)
	return &Outcome{
		Product: p,
		Record:  record,
	}, nil
}

// normaliseDetails - details as they will read back from the store
//
// the transaction hash is taken when the record is submitted and again
// from the stored JSON when it is confirmed, so both must see the same
// values: all numbers become float64 and structs become maps
func normaliseDetails(details map[string]interface{}) (map[string]interface{}, error) {
	normalised := map[string]interface{}{}
	if 0 == len(details) {
		return normalised, nil
	}
	buffer, err := json.Marshal(details)
	if nil != err {
		return nil, errors.Wrapf(fault.ErrInvalidMetadata, "details: %s", err)
	}
	if err := json.Unmarshal(buffer, &normalised); nil != err {
		return nil, errors.Wrapf(fault.ErrInvalidMetadata, "details: %s", err)
	}
	return normalised, nil
}

// copy caller details so later changes by the caller are not recorded
func copyDetails(details map[string]interface{}) map[string]interface{} {
	d := make(map[string]interface{}, len(details)+4)
	for k, v := range details {
		d[k] = v
	}
	return d
}
