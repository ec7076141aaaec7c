// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node - composition root of a ledger node
//
// every component is constructed here and handed its dependencies;
// there are no package level singletons.  The node exposes the
// inbound actions as Results together with the provenance queries
// and operator maintenance tasks.
package node
