// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package product

// Status - lifecycle or stock status of a product
type Status string

// lifecycle states
const (
	Created     Status = "CREATED"
	Transferred Status = "TRANSFERRED"
	Received    Status = "RECEIVED"
	Verified    Status = "VERIFIED"
	Defective   Status = "DEFECTIVE"
	Sold        Status = "SOLD"
	Recalled    Status = "RECALLED"
)

// stock states, orthogonal to the lifecycle
const (
	InStock    Status = "IN_STOCK"
	LowStock   Status = "LOW_STOCK"
	OutOfStock Status = "OUT_OF_STOCK"
)

// DefaultLowStockThreshold - quantity at or below which stock is low
const DefaultLowStockThreshold = 10

// IsLifecycle - true for the ownership lifecycle states
func (s Status) IsLifecycle() bool {
	switch s {
	case Created, Transferred, Received, Verified, Defective, Sold, Recalled:
		return true
	}
	return false
}

// IsStock - true for the derived stock states
func (s Status) IsStock() bool {
	switch s {
	case InStock, LowStock, OutOfStock:
		return true
	}
	return false
}

// StockStatusFor - derive the stock status from a quantity
func StockStatusFor(quantity int64, lowStockThreshold int64) Status {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= lowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}
