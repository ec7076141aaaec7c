// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockheader

import (
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/blockdigest"
	"github.com/bitmark-inc/supplyledger/fault"
)

// Verify - recompute every block from genesis to the latest block
//
// returns the number of blocks checked; the error names the first
// height that does not match
func (c *Chain) Verify() (uint64, error) {
	top, latestDigest := c.Get()

	previous := blockdigest.Genesis
	for height := uint64(1); height <= top; height += 1 {
		block, err := c.Block(height)
		if nil != err {
			return height - 1, errors.Wrapf(fault.ErrChainBroken, "block: %d: %s", height, err)
		}
		if block.PreviousHash != previous {
			return height - 1, errors.Wrapf(fault.ErrChainBroken, "block: %d: previous hash", height)
		}
		if 1 != len(block.Transactions) {
			return height - 1, errors.Wrapf(fault.ErrChainBroken, "block: %d: transaction count: %d", height, len(block.Transactions))
		}

		record, err := c.linker.Get(block.Transactions[0])
		if nil != err {
			return height - 1, errors.Wrapf(fault.ErrChainBroken, "block: %d: record: %s", height, err)
		}

		txHash, err := blockdigest.TransactionHash(record)
		if nil != err {
			return height - 1, err
		}
		if txHash != block.TransactionHash {
			return height - 1, errors.Wrapf(fault.ErrTransactionHashMismatch, "block: %d", height)
		}

		blockHash, err := blockdigest.BlockHash(height, record, previous)
		if nil != err {
			return height - 1, err
		}
		if blockHash != block.Hash {
			return height - 1, errors.Wrapf(fault.ErrChainBroken, "block: %d: hash", height)
		}

		if nil == record.Linkage {
			c.log.Warnf("verify: block: %d  record: %s  has no linkage", height, record.Id)
		} else if record.Linkage.BlockHash != blockHash.String() || record.Linkage.BlockHeight != height {
			return height - 1, errors.Wrapf(fault.ErrChainBroken, "block: %d: record linkage", height)
		}

		previous = blockHash
	}

	if top > 0 && latestDigest != previous {
		return top, errors.Wrap(fault.ErrChainBroken, "latest pointer")
	}
	return top, nil
}
