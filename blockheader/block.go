// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockheader

import (
	"fmt"

	"github.com/bitmark-inc/supplyledger/blockdigest"
)

// storage keys
const (
	latestKey       = "blockchain:latest"
	blockPrefix     = "blockchain:block:"
	blockHashPrefix = "blockchain:hash:"
)

// Block - a stored block holding one record
type Block struct {
	Height          uint64             `json:"height"`
	Hash            blockdigest.Digest `json:"hash"`
	PreviousHash    blockdigest.Digest `json:"previousHash"`
	Timestamp       int64              `json:"timestamp"`
	Transactions    []string           `json:"transactions"`
	TransactionHash blockdigest.Digest `json:"transactionHash"`
	ValidatorId     string             `json:"validatorId"`
}

// the latest block pointer
type latest struct {
	Height uint64             `json:"height"`
	Hash   blockdigest.Digest `json:"hash"`
}

// heights are zero padded so that key order is height order
func blockKey(height uint64) string {
	return fmt.Sprintf("%s%020d", blockPrefix, height)
}

func blockHashKey(digest blockdigest.Digest) string {
	return blockHashPrefix + digest.String()
}
