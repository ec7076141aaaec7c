// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package consensus - multi-party quality verification
//
// Each product accepts at most one verification per participant and
// at most one per role.  Every accepted score is folded into a
// running average held in the product metadata; a score given at
// creation counts as the first verification.
//
// Storage:
//
//   product:{productId}:verification:{verifierId} - Verification (JSON)
//   product:{productId}:role:{role}               - verifierId
package consensus
