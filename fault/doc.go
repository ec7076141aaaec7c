// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - shared error values for the ledger
//
// each value belongs to a class (invalid, not found, conflict...)
// so callers test the class with the IsErr functions or compare the
// value directly after errors.Cause
package fault
