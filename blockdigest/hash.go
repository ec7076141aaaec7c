// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdigest

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/ledger"
)

// the hashed fields of a transaction, order is significant
type transactionContent struct {
	Id                string                 `json:"id"`
	Timestamp         int64                  `json:"timestamp"`
	ProductId         string                 `json:"productId"`
	FromParticipantId string                 `json:"fromParticipantId"`
	ToParticipantId   string                 `json:"toParticipantId"`
	ActionType        ledger.ActionType      `json:"actionType"`
	Details           map[string]interface{} `json:"details"`
}

// the hashed fields of a block, order is significant
type blockContent struct {
	Height       uint64   `json:"height"`
	Timestamp    int64    `json:"timestamp"`
	Transactions []string `json:"transactions"`
	PreviousHash string   `json:"previousHash"`
}

// TransactionHash - digest of the identifying fields of a record
func TransactionHash(record *ledger.Record) (Digest, error) {
	details := record.Details
	if nil == details {
		details = map[string]interface{}{}
	}
	buffer, err := json.Marshal(transactionContent{
		Id:                record.Id,
		Timestamp:         record.Timestamp,
		ProductId:         record.ProductId,
		FromParticipantId: record.FromParticipantId,
		ToParticipantId:   record.ToParticipantId,
		ActionType:        record.ActionType,
		Details:           details,
	})
	if nil != err {
		return Digest{}, errors.Wrapf(err, "transaction hash: %s", record.Id)
	}
	return NewDigest(buffer), nil
}

// BlockHash - digest of a block holding a single record
//
// heights of one or less always chain to the genesis digest
func BlockHash(height uint64, record *ledger.Record, previous Digest) (Digest, error) {
	if height <= 1 {
		previous = Genesis
	}
	buffer, err := json.Marshal(blockContent{
		Height:       height,
		Timestamp:    record.Timestamp,
		Transactions: []string{record.Id},
		PreviousHash: previous.String(),
	})
	if nil != err {
		return Digest{}, errors.Wrapf(err, "block hash: %d", height)
	}
	return NewDigest(buffer), nil
}
