// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package product

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/bitmark-inc/supplyledger/fault"
)

// Product - current state of a tracked item
type Product struct {
	Id                  string   `json:"id"`
	OwnerId             string   `json:"ownerId"`
	CreatorId           string   `json:"creatorId"`
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Quantity            int64    `json:"quantity"`
	Price               float64  `json:"price"`
	Status              Status   `json:"status"`
	StockStatus         Status   `json:"stockStatus,omitempty"`
	Metadata            Metadata `json:"metadata"`
	InitialQualityScore *float64 `json:"initialQualityScore,omitempty"`
	Reconstructed       bool     `json:"reconstructed,omitempty"`
	CreatedAt           int64    `json:"createdAt"`
	UpdatedAt           int64    `json:"updatedAt"`
}

// Fields - caller supplied values for a new product
type Fields struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Quantity    int64    `json:"quantity"`
	Price       float64  `json:"price"`
	Metadata    Metadata `json:"metadata"`
}

// NewId - a globally unique product identifier
func NewId() string {
	return uuid.New().String()
}

// Validate - check caller supplied fields
func (f *Fields) Validate() error {
	if "" == strings.TrimSpace(f.Name) {
		return fault.ErrInvalidName
	}
	if f.Quantity < 0 {
		return fault.ErrInvalidQuantity
	}
	if f.Price < 0 || math.IsNaN(f.Price) || math.IsInf(f.Price, 0) {
		return fault.ErrInvalidPrice
	}
	return f.Metadata.Validate()
}

// Touch - advance the update time, never moving it backwards
func (p *Product) Touch(now int64) {
	if now > p.UpdatedAt {
		p.UpdatedAt = now
	}
}

// Validate - check the invariants of a stored product
func (p *Product) Validate() error {
	if "" == p.Id || "" == p.OwnerId {
		return fault.ErrInvalidIdentifier
	}
	if p.Quantity < 0 {
		return fault.ErrInvalidQuantity
	}
	if p.Price < 0 {
		return fault.ErrInvalidPrice
	}
	if !p.Status.IsLifecycle() {
		return fault.ErrInvalidMetadata
	}
	return p.Metadata.Validate()
}
