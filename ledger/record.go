// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
)

// ActionType - the kind of product mutation a record describes
type ActionType string

// all action types
const (
	Create      ActionType = "CREATE"
	Transfer    ActionType = "TRANSFER"
	Receive     ActionType = "RECEIVE"
	Update      ActionType = "UPDATE"
	Verify      ActionType = "VERIFY"
	Sell        ActionType = "SELL"
	Recall      ActionType = "RECALL"
	StockIn     ActionType = "STOCK_IN"
	StockOut    ActionType = "STOCK_OUT"
	StockAdjust ActionType = "STOCK_ADJUST"
)

// Valid - check for a known action type
func (a ActionType) Valid() bool {
	switch a {
	case Create, Transfer, Receive, Update, Verify, Sell, Recall, StockIn, StockOut, StockAdjust:
		return true
	}
	return false
}

// Linkage - the block that confirmed a record
type Linkage struct {
	BlockHeight     uint64 `json:"blockHeight"`
	BlockHash       string `json:"blockHash"`
	TransactionHash string `json:"transactionHash"`
	Timestamp       int64  `json:"timestamp"`
	ValidatorId     string `json:"validatorId"`
}

// Record - one immutable ledger entry
//
// the only permitted change after creation is attaching the linkage
type Record struct {
	Id                string                 `json:"id"`
	ProductId         string                 `json:"productId"`
	FromParticipantId string                 `json:"fromParticipantId"`
	FromRole          role.Role              `json:"fromRole"`
	ToParticipantId   string                 `json:"toParticipantId"`
	ToRole            role.Role              `json:"toRole"`
	ActionType        ActionType             `json:"actionType"`
	ResultingStatus   product.Status         `json:"resultingProductStatus"`
	Timestamp         int64                  `json:"timestamp"`
	Details           map[string]interface{} `json:"details"`
	BlockHash         string                 `json:"blockHash,omitempty"`
	TransactionHash   string                 `json:"transactionHash,omitempty"`
	Linkage           *Linkage               `json:"blockchainLinkage"`
}

// NewRecordId - identifier of the form txn-<millis>-<random>
func NewRecordId(timestamp int64) string {
	random := strings.Replace(uuid.New().String(), "-", "", -1)
	return fmt.Sprintf("txn-%d-%s", timestamp, random[:9])
}

// NowMillis - current time as epoch milliseconds
func NowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// IsConfirmed - true once a block linkage is attached
func (r *Record) IsConfirmed() bool {
	return nil != r.Linkage
}

func (r *Record) validate() error {
	if err := role.CheckIdentifier(r.ProductId); nil != err {
		return err
	}
	if !r.ActionType.Valid() {
		return fault.ErrUnknownActionType
	}
	for _, id := range []string{r.FromParticipantId, r.ToParticipantId} {
		if "" == id {
			continue
		}
		if err := role.CheckIdentifier(id); nil != err {
			return err
		}
	}
	return nil
}

// newest first, ties broken by identifier
type newestFirst []*Record

func (n newestFirst) Len() int      { return len(n) }
func (n newestFirst) Swap(i, j int) { n[i], n[j] = n[j], n[i] }
func (n newestFirst) Less(i, j int) bool {
	if n[i].Timestamp != n[j].Timestamp {
		return n[i].Timestamp > n[j].Timestamp
	}
	return n[i].Id > n[j].Id
}
