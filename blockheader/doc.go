// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockheader - the chain of single-record blocks
//
// Each confirmed ledger record becomes one block.  The latest block
// pointer is kept at blockchain:latest and every block is stored by
// height and by hash.  Heights start at 1; the block before height 1
// is the genesis digest.
package blockheader
