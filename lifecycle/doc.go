// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package lifecycle - the only writer of product state
//
// Every action follows the same sequence under a per-product lock:
// load the stored product, check the guard against that state, mutate,
// write the product, append the ledger record and hand the record to
// the gateway.  There is no rollback: a ledger failure after the
// product write is reported as unbacked state.
//
//   CREATED -> TRANSFERRED -> RECEIVED -> VERIFIED | DEFECTIVE -> SOLD
//
// RECALLED can be reached from every other state.  Stock levels have
// their own status alongside the lifecycle.
package lifecycle
