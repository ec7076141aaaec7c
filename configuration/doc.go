// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - node settings from a Lua script
//
// the script runs with the standard Lua libraries and must finish by
// returning a table; that table fills in Configuration on top of the
// built-in defaults.  A Watcher re-reads the file when it changes.
package configuration
