// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle

import (
	"github.com/bitmark-inc/supplyledger/consensus"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/ownership"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
)

// Create - register a new product owned by its producer
func (m *Machine) Create(creatorId string, fields *product.Fields) (*Outcome, error) {
	if nil == fields {
		return nil, fault.ErrMissingParameters
	}
	creatorRole, err := m.roleOf(creatorId)
	if nil != err {
		return nil, err
	}
	if role.Producer != creatorRole {
		return nil, fault.ErrNotProducer
	}
	if err := fields.Validate(); nil != err {
		return nil, err
	}
	if _, ok := fields.Metadata[product.KeyQualityScoreHistory]; ok {
		return nil, fault.ErrReservedMetadataKey
	}

	metadata := fields.Metadata.Clone()
	p := &product.Product{
		Id:          product.NewId(),
		OwnerId:     creatorId,
		CreatorId:   creatorId,
		Name:        fields.Name,
		Description: fields.Description,
		Quantity:    fields.Quantity,
		Price:       fields.Price,
		Status:      product.Created,
		StockStatus: product.StockStatusFor(fields.Quantity, m.lowStockThreshold()),
		Metadata:    metadata,
	}

	ts := m.timestamp(nil)
	p.CreatedAt = ts

	// a score given at creation is the first, implicit, verification
	if score, ok := metadata.QualityScore(); ok {
		p.InitialQualityScore = &score
		err := metadata.AppendHistory(product.QualityEntry{
			Score:         score,
			Role:          creatorRole,
			ParticipantId: creatorId,
			Timestamp:     ts,
		})
		if nil != err {
			return nil, err
		}
	}

	unlock := m.locks.Lock(p.Id)
	defer unlock()

	record := &ledger.Record{
		ToParticipantId: creatorId,
		ToRole:          creatorRole,
		ActionType:      ledger.Create,
		Timestamp:       ts,
		Details: map[string]interface{}{
			detailName:     p.Name,
			detailQuantity: p.Quantity,
			detailPrice:    p.Price,
		},
	}
	if "" != p.Description {
		record.Details[detailDescription] = p.Description
	}
	if nil != p.InitialQualityScore {
		record.Details[detailQualityScore] = *p.InitialQualityScore
	}
	return m.commit(p, record)
}

// Transfer - hand a product to the next role in the chain
func (m *Machine) Transfer(productId string, fromId string, toId string, details map[string]interface{}) (*Outcome, error) {
	fromRole, err := m.roleOf(fromId)
	if nil != err {
		return nil, err
	}
	toRole, err := m.roleOf(toId)
	if nil != err {
		return nil, err
	}
	if fromId == toId {
		return nil, fault.ErrSameParticipant
	}

	unlock := m.locks.Lock(productId)
	defer unlock()

	p, err := m.load(productId)
	if nil != err {
		return nil, err
	}
	switch p.Status {
	case product.Recalled:
		return nil, fault.ErrProductRecalled
	case product.Sold:
		return nil, fault.ErrAlreadySold
	}
	if p.OwnerId != fromId {
		return nil, fault.ErrNotOwner
	}
	if err := ownership.CanTransfer(fromRole, toRole); nil != err {
		return nil, err
	}

	p.OwnerId = toId
	p.Status = product.Transferred

	return m.commit(p, &ledger.Record{
		FromParticipantId: fromId,
		FromRole:          fromRole,
		ToParticipantId:   toId,
		ToRole:            toRole,
		ActionType:        ledger.Transfer,
		Timestamp:         m.timestamp(p),
		Details:           copyDetails(details),
	})
}

// Receive - the new owner acknowledges a transfer
func (m *Machine) Receive(productId string, receiverId string, details map[string]interface{}) (*Outcome, error) {
	receiverRole, err := m.roleOf(receiverId)
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
	if p.OwnerId != receiverId {
		return nil, fault.ErrNotOwner
	}
	if product.Transferred != p.Status {
		return nil, fault.ErrNotTransferred
	}

	record := &ledger.Record{
		ToParticipantId: receiverId,
		ToRole:          receiverRole,
		ActionType:      ledger.Receive,
		Timestamp:       m.timestamp(p),
		Details:         copyDetails(details),
	}

	// the sender is the one named by the latest transfer
	sender, err := m.lastTransfer(productId)
	if nil != err {
		return nil, err
	}
	if nil != sender {
		record.FromParticipantId = sender.FromParticipantId
		record.FromRole = sender.FromRole
	}

	p.Status = product.Received
	return m.commit(p, record)
}

func (m *Machine) lastTransfer(productId string) (*ledger.Record, error) {
	records, err := m.ledger.QueryByProduct(productId)
	if nil != err {
		return nil, err
	}
	for _, r := range records {
		if ledger.Transfer == r.ActionType {
			return r, nil
		}
	}
	return nil, nil
}

// Verify - record a quality verification and derive the status
func (m *Machine) Verify(productId string, verifierId string, score float64, details map[string]interface{}) (*Outcome, error) {
	verifierRole, err := m.roleOf(verifierId)
	if nil != err {
		return nil, err
	}
	if !consensus.CanVerify(verifierRole) {
		return nil, fault.ErrRoleCannotVerify
	}

	unlock := m.locks.Lock(productId)
	defer unlock()

	p, err := m.load(productId)
	if nil != err {
		return nil, err
	}
	switch p.Status {
	case product.Recalled:
		return nil, fault.ErrProductRecalled
	case product.Sold:
		return nil, fault.ErrAlreadySold
	}

	ts := m.timestamp(p)
	passed := consensus.Passed(score)
	v, err := m.engine.RecordVerification(p, &consensus.Request{
		VerifierId:   verifierId,
		VerifierRole: verifierRole,
		Score:        score,
		Passed:       passed,
		Details:      copyDetails(details),
		Timestamp:    ts,
	})
	if nil != err {
		return nil, err
	}

	p.Status = consensus.StatusFor(score)

	recordDetails := copyDetails(details)
	recordDetails[detailQualityScore] = v.QualityScore
	recordDetails["passed"] = v.Passed
	if average, ok := p.Metadata.QualityScore(); ok {
		recordDetails[detailAverageQualityScore] = average
	}

	return m.commit(p, &ledger.Record{
		FromParticipantId: verifierId,
		FromRole:          verifierRole,
		ActionType:        ledger.Verify,
		Timestamp:         ts,
		Details:           recordDetails,
	})
}

// Sell - a retailer sells to a consumer
func (m *Machine) Sell(productId string, sellerId string, buyerId string, details map[string]interface{}) (*Outcome, error) {
	sellerRole, err := m.roleOf(sellerId)
	if nil != err {
		return nil, err
	}
	buyerRole, err := m.roleOf(buyerId)
	if nil != err {
		return nil, err
	}

	unlock := m.locks.Lock(productId)
	defer unlock()

	p, err := m.load(productId)
	if nil != err {
		return nil, err
	}
	if p.Reconstructed {
		return nil, fault.ErrReconstructedProduct
	}
	switch p.Status {
	case product.Recalled:
		return nil, fault.ErrProductRecalled
	case product.Sold:
		return nil, fault.ErrAlreadySold
	}
	if p.OwnerId != sellerId {
		return nil, fault.ErrNotOwner
	}
	if err := ownership.CanSell(sellerRole, buyerRole); nil != err {
		return nil, err
	}

	p.OwnerId = buyerId
	p.Status = product.Sold

	return m.commit(p, &ledger.Record{
		FromParticipantId: sellerId,
		FromRole:          sellerRole,
		ToParticipantId:   buyerId,
		ToRole:            buyerRole,
		ActionType:        ledger.Sell,
		Timestamp:         m.timestamp(p),
		Details:           copyDetails(details),
	})
}

// Recall - withdraw a product, by its creator or current owner
func (m *Machine) Recall(productId string, actorId string, reason string, details map[string]interface{}) (*Outcome, error) {
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
		return nil, fault.ErrAlreadyRecalled
	}
	if actorId != p.CreatorId && actorId != p.OwnerId {
		return nil, fault.ErrNotCreatorOrOwner
	}

	previous := p.Status
	p.Status = product.Recalled

	recordDetails := copyDetails(details)
	recordDetails["reason"] = reason
	recordDetails["previousStatus"] = string(previous)

	return m.commit(p, &ledger.Record{
		FromParticipantId: actorId,
		FromRole:          actorRole,
		ActionType:        ledger.Recall,
		Timestamp:         m.timestamp(p),
		Details:           recordDetails,
	})
}
