// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the append-only log of product actions
//
// Every mutation of a product is recorded here as an immutable
// Record.  A record is written once and afterwards only gains a block
// linkage when the pending pool confirms it.
//
// Records are indexed by product and by participant.  Index keys are
// written after the primary record, so a failure can leave a record
// that is only reachable by scanning the whole log; the query
// functions perform that scan and rewrite any missing index entries.
package ledger
