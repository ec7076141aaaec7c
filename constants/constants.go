// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package constants - timing defaults shared by the node components
package constants

import (
	"time"
)

// the time for a pending transaction to expire
const (
	PendingExpiry = 60 * time.Minute
)

// the delay between attempts to assemble the pending pool
const (
	AssemblyInterval = 5 * time.Second
)

// the delay between passes resubmitting unconfirmed records
const (
	ReconcileInterval = 5 * time.Minute
)
