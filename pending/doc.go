// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pending - the local pending pool and block assembler
//
// Signed transactions wait here, keyed by transaction hash, until the
// assembler puts each one into its own block.  Entries that are not
// assembled before they expire are dropped; their ledger records stay
// unconfirmed and the reconciler submits them again.
package pending
