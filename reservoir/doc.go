// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reservoir - the gateway between the ledger and block assembly
//
// Every appended ledger record is signed on behalf of the participant
// that caused it and handed to a pending pool.  The pool belongs to
// the block assembler; the gateway only knows its Add, Count and
// Assemble operations.  A failure here never undoes the product or
// ledger write that preceded it: the record simply stays unconfirmed
// until the reconciler submits it again.
package reservoir
