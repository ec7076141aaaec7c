// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdigest - transaction and block hashing
//
// SHA-256 over a canonical JSON encoding: struct fields in a fixed
// order, map keys sorted.  The functions are pure so a chain can be
// re-verified at any time from the stored records.
package blockdigest
