// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdigest_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/supplyledger/blockdigest"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
)

func TestDigest(t *testing.T) {
	d := blockdigest.NewDigest([]byte("abc"))

	// printf '%s' 'abc' | sha256sum
	expected := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	assert.Equal(t, expected, d.String(), "string")
	assert.Equal(t, expected, fmt.Sprintf("%s", d), "fmt %%s")
	assert.Equal(t, "<SHA256:"+expected+">", fmt.Sprintf("%#v", d), "fmt %%#v")

	buffer, err := json.Marshal(d)
	require.Nil(t, err, "marshal")
	assert.Equal(t, `"`+expected+`"`, string(buffer), "json")

	var d2 blockdigest.Digest
	err = json.Unmarshal(buffer, &d2)
	require.Nil(t, err, "unmarshal")
	assert.Equal(t, d, d2, "round trip")

	d3, err := blockdigest.FromString(expected)
	require.Nil(t, err, "from string")
	assert.Equal(t, d, d3, "from string")

	_, err = blockdigest.FromString("abcd")
	assert.Equal(t, fault.ErrInvalidDigest, err, "short digest")

	_, err = blockdigest.FromString(strings.Repeat("zz", 32))
	assert.Equal(t, fault.ErrInvalidDigest, err, "not hex")

	var d4 blockdigest.Digest
	err = blockdigest.DigestFromBytes(&d4, d[:])
	assert.Nil(t, err, "from bytes")
	assert.Equal(t, d, d4, "from bytes")
	err = blockdigest.DigestFromBytes(&d4, d[:5])
	assert.NotNil(t, err, "from short bytes")
}

func TestGenesis(t *testing.T) {
	assert.Equal(t, strings.Repeat("0", 64), blockdigest.Genesis.String(), "genesis text")
	assert.True(t, blockdigest.Genesis.IsEmpty(), "genesis empty")
}

func testRecord() *ledger.Record {
	return &ledger.Record{
		Id:                "txn-1700000000000-abc123def",
		ProductId:         "p-1",
		FromParticipantId: "FARM-001",
		ToParticipantId:   "COLL-001",
		ActionType:        ledger.Transfer,
		Timestamp:         1700000000000,
		Details: map[string]interface{}{
			"b": "second",
			"a": 1,
		},
	}
}

func TestTransactionHashDeterministic(t *testing.T) {
	h1, err := blockdigest.TransactionHash(testRecord())
	require.Nil(t, err, "hash 1")
	h2, err := blockdigest.TransactionHash(testRecord())
	require.Nil(t, err, "hash 2")
	assert.Equal(t, h1, h2, "same input same hash")
	assert.Equal(t, 64, len(h1.String()), "hex length")

	// fields outside the hashed set do not matter
	r := testRecord()
	r.ResultingStatus = "SOLD"
	r.BlockHash = "ffff"
	h3, err := blockdigest.TransactionHash(r)
	require.Nil(t, err, "hash 3")
	assert.Equal(t, h1, h3, "unhashed fields ignored")

	// a stored record reloaded from JSON hashes identically
	buffer, err := json.Marshal(testRecord())
	require.Nil(t, err, "marshal record")
	reloaded := &ledger.Record{}
	require.Nil(t, json.Unmarshal(buffer, reloaded), "unmarshal record")
	h4, err := blockdigest.TransactionHash(reloaded)
	require.Nil(t, err, "hash 4")
	assert.Equal(t, h1, h4, "reloaded record")
}

func TestTransactionHashSensitivity(t *testing.T) {
	base, err := blockdigest.TransactionHash(testRecord())
	require.Nil(t, err, "base hash")

	r := testRecord()
	r.Details["a"] = 2
	h, err := blockdigest.TransactionHash(r)
	require.Nil(t, err, "changed details")
	assert.NotEqual(t, base, h, "details change")

	r = testRecord()
	r.ToParticipantId = "COLL-002"
	h, err = blockdigest.TransactionHash(r)
	require.Nil(t, err, "changed receiver")
	assert.NotEqual(t, base, h, "receiver change")

	r = testRecord()
	r.Timestamp += 1
	h, err = blockdigest.TransactionHash(r)
	require.Nil(t, err, "changed timestamp")
	assert.NotEqual(t, base, h, "timestamp change")
}

func TestBlockHash(t *testing.T) {
	r := testRecord()
	previous := blockdigest.NewDigest([]byte("previous"))

	h1, err := blockdigest.BlockHash(1, r, previous)
	require.Nil(t, err, "height 1")
	h1g, err := blockdigest.BlockHash(1, r, blockdigest.Genesis)
	require.Nil(t, err, "height 1 genesis")
	assert.Equal(t, h1g, h1, "height 1 ignores previous")

	h2, err := blockdigest.BlockHash(2, r, previous)
	require.Nil(t, err, "height 2")
	h2g, err := blockdigest.BlockHash(2, r, blockdigest.Genesis)
	require.Nil(t, err, "height 2 genesis")
	assert.NotEqual(t, h2, h2g, "previous is chained")
	assert.NotEqual(t, h1, h2, "height is hashed")
}
