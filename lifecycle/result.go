// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle

import (
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/product"
)

// Outcome - the state written by a successful action
type Outcome struct {
	Product *product.Product
	Record  *ledger.Record
}

// Result - reply shape for callers outside the core
type Result struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionId string `json:"transactionId,omitempty"`
	ProductId     string `json:"productId,omitempty"`
}

// Response - convert an action outcome into a Result
//
// failures carry the reason code in the message
func Response(o *Outcome, err error) Result {
	if nil != err {
		return Result{
			Success: false,
			Message: fault.Code(err),
		}
	}
	return Result{
		Success:       true,
		Message:       string(o.Record.ActionType) + " accepted",
		TransactionId: o.Record.Id,
		ProductId:     o.Product.Id,
	}
}
