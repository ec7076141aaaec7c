// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reservoir

import (
	"encoding/hex"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/supplyledger/blockdigest"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/keypair"
	"github.com/bitmark-inc/supplyledger/ledger"
)

// Transaction - a signed ledger record waiting for a block
type Transaction struct {
	RecordId      string `json:"recordId"`
	ProductId     string `json:"productId"`
	ParticipantId string `json:"participantId"`
	Hash          string `json:"hash"`
	PublicKey     string `json:"publicKey"`
	Signature     string `json:"signature"`
	Timestamp     int64  `json:"timestamp"`
}

// Signer - produces participant signatures
type Signer interface {
	Sign(participantId string, message []byte) ([]byte, ed25519.PublicKey, error)
}

// signing participant of a record: the sender, or the receiver when
// there is no sender as for CREATE
func signerOf(record *ledger.Record) string {
	if "" != record.FromParticipantId {
		return record.FromParticipantId
	}
	return record.ToParticipantId
}

// NewTransaction - hash and sign a record
func NewTransaction(signer Signer, record *ledger.Record) (*Transaction, error) {
	digest, err := blockdigest.TransactionHash(record)
	if nil != err {
		return nil, err
	}

	participantId := signerOf(record)
	signature, publicKey, err := signer.Sign(participantId, digest[:])
	if nil != err {
		return nil, err
	}

	return &Transaction{
		RecordId:      record.Id,
		ProductId:     record.ProductId,
		ParticipantId: participantId,
		Hash:          digest.String(),
		PublicKey:     hex.EncodeToString(publicKey),
		Signature:     hex.EncodeToString(signature),
		Timestamp:     record.Timestamp,
	}, nil
}

// Check - verify the signature over the transaction hash
func (tx *Transaction) Check() error {
	if nil == tx || "" == tx.RecordId {
		return fault.ErrMissingParameters
	}
	digest, err := blockdigest.FromString(tx.Hash)
	if nil != err {
		return err
	}
	publicKey, err := hex.DecodeString(tx.PublicKey)
	if nil != err {
		return fault.ErrInvalidSignature
	}
	signature, err := hex.DecodeString(tx.Signature)
	if nil != err {
		return fault.ErrInvalidSignature
	}
	return keypair.Verify(ed25519.PublicKey(publicKey), digest[:], signature)
}
