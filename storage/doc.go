// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// A single LevelDB database holds every table.  Each table is a key
// prefix and keys are plain strings with ':' as separator, so a
// prefix scan in lexicographic order replaces secondary indexes.
//
// The store only offers per-key get/put/delete and ordered prefix
// iteration.  Batches are intentionally not exposed so the layers
// above never rely on multi-key atomicity.
//
// Ledger:
//
//   tx:{recordId}                          - ledger record (JSON)
//   product:{productId}:tx:{recordId}      - index: records of a product
//                                            data: recordId
//   participant:{participantId}:{recordId} - index: records of a participant
//                                            data: recordId
//   hash:{transactionHash}                 - index: confirmed transaction hash
//                                            data: recordId
//
// Products:
//
//   product:{productId}                    - current product snapshot (JSON)
//   product:{productId}:verification:{id}  - quality verification (JSON)
//   product:{productId}:role:{role}        - role that has verified
//                                            data: verifierId
//
// Blocks:
//
//   blockchain:latest                      - latest block pointer (JSON)
//   blockchain:block:{height}              - block (JSON), height zero padded to 20 digits
//   blockchain:hash:{blockHash}            - block height for a hash
//
// Version:
//
//   \x00version                            - database version, big endian uint32
package storage
