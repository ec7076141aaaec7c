// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle

import (
	"math"
	"strings"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/product"
)

// Changes - fields an owner may edit; nil leaves a field unchanged
type Changes struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *float64         `json:"price,omitempty"`
	Metadata    product.Metadata `json:"metadata,omitempty"`
}

// keys only the consensus engine may write
var qualityKeys = []string{
	product.KeyQualityScore,
	product.KeyQualityScoreHistory,
}

// Update - edit descriptive fields and metadata
func (m *Machine) Update(productId string, actorId string, changes *Changes, details map[string]interface{}) (*Outcome, error) {
	if nil == changes {
		return nil, fault.ErrMissingParameters
	}
	actorRole, err := m.roleOf(actorId)
	if nil != err {
		return nil, err
	}
	for _, k := range qualityKeys {
		if _, ok := changes.Metadata[k]; ok {
			return nil, fault.ErrReservedMetadataKey
		}
	}
	if nil != changes.Name && "" == strings.TrimSpace(*changes.Name) {
		return nil, fault.ErrInvalidName
	}
	if nil != changes.Price && (*changes.Price < 0 || math.IsNaN(*changes.Price) || math.IsInf(*changes.Price, 0)) {
		return nil, fault.ErrInvalidPrice
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

	recordDetails := copyDetails(details)
	changed := []string{}

	if nil != changes.Name {
		p.Name = *changes.Name
		recordDetails[detailName] = p.Name
		changed = append(changed, detailName)
	}
	if nil != changes.Description {
		p.Description = *changes.Description
		recordDetails[detailDescription] = p.Description
		changed = append(changed, detailDescription)
	}
	if nil != changes.Price {
		p.Price = *changes.Price
		recordDetails[detailPrice] = p.Price
		changed = append(changed, detailPrice)
	}
	if len(changes.Metadata) > 0 {
		metadata := p.Metadata.Clone()
		for k, v := range changes.Metadata {
			if nil == v {
				delete(metadata, k)
			} else {
				metadata[k] = v
			}
			changed = append(changed, "metadata."+k)
		}
		if err := metadata.Validate(); nil != err {
			return nil, err
		}
		p.Metadata = metadata
	}
	recordDetails["changed"] = changed

	return m.commit(p, &ledger.Record{
		FromParticipantId: actorId,
		FromRole:          actorRole,
		ActionType:        ledger.Update,
		Timestamp:         m.timestamp(p),
		Details:           recordDetails,
	})
}
