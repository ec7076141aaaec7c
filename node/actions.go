// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"github.com/bitmark-inc/supplyledger/lifecycle"
	"github.com/bitmark-inc/supplyledger/product"
)

// CreateProduct - register a new product
func (n *Node) CreateProduct(creatorId string, fields *product.Fields) lifecycle.Result {
	return lifecycle.Response(n.machine.Create(creatorId, fields))
}

// TransferProduct - pass a product to the next participant
func (n *Node) TransferProduct(productId string, fromId string, toId string, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.Transfer(productId, fromId, toId, details))
}

// ReceiveProduct - acknowledge a transfer
func (n *Node) ReceiveProduct(productId string, receiverId string, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.Receive(productId, receiverId, details))
}

// VerifyProduct - record a quality verification
func (n *Node) VerifyProduct(productId string, verifierId string, score float64, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.Verify(productId, verifierId, score, details))
}

// RecallProduct - withdraw a product
func (n *Node) RecallProduct(productId string, actorId string, reason string, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.Recall(productId, actorId, reason, details))
}

// SellProduct - final sale to a consumer
func (n *Node) SellProduct(productId string, sellerId string, buyerId string, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.Sell(productId, sellerId, buyerId, details))
}

// UpdateProduct - edit descriptive fields
func (n *Node) UpdateProduct(productId string, actorId string, changes *lifecycle.Changes, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.Update(productId, actorId, changes, details))
}

// StockIn - add units
func (n *Node) StockIn(productId string, actorId string, amount int64, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.StockIn(productId, actorId, amount, details))
}

// StockOut - remove units
func (n *Node) StockOut(productId string, actorId string, amount int64, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.StockOut(productId, actorId, amount, details))
}

// StockAdjust - set the counted quantity
func (n *Node) StockAdjust(productId string, actorId string, quantity int64, details map[string]interface{}) lifecycle.Result {
	return lifecycle.Response(n.machine.StockAdjust(productId, actorId, quantity, details))
}
