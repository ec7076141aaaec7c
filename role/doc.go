// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package role - supply-chain roles of participants
//
// A participant identifier has the form CODE-suffix where CODE is a
// four letter role code, e.g. FARM-001 is a producer and RETL-001 a
// retailer.  The Directory interface hides this convention so that a
// real registry can replace it.
package role
