// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ownership - who may hand a product to whom, and who holds what
//
// The transfer graph is fixed:
//
//   PRODUCER -> COLLECTOR -> TRADER -> RETAILER
//
// and a RETAILER may only sell to a CONSUMER.  Every other pair is
// denied, including any pair involving an unknown role.
package ownership
