// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// key layout, see storage/doc.go
const (
	recordPrefix      = "tx:"
	participantPrefix = "participant:"
	hashPrefix        = "hash:"
)

func recordKey(recordId string) string {
	return recordPrefix + recordId
}

func productIndexPrefix(productId string) string {
	return "product:" + productId + ":tx:"
}

func productIndexKey(productId string, recordId string) string {
	return productIndexPrefix(productId) + recordId
}

func participantIndexPrefix(participantId string) string {
	return participantPrefix + participantId + ":"
}

func participantIndexKey(participantId string, recordId string) string {
	return participantIndexPrefix(participantId) + recordId
}

func hashKey(transactionHash string) string {
	return hashPrefix + transactionHash
}
