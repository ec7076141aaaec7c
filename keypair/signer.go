// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keypair

import (
	"sync"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/supplyledger/fault"
)

// Signer - signs on behalf of participants
type Signer struct {
	sync.Mutex
	secret []byte
	keys   map[string]*KeyPair
}

// NewSigner - signer over a parsed seed secret
func NewSigner(secret []byte) (*Signer, error) {
	if secretLength != len(secret) {
		return nil, fault.ErrInvalidSeed
	}
	return &Signer{
		secret: append([]byte{}, secret...),
		keys:   make(map[string]*KeyPair),
	}, nil
}

// KeyPair - derived keys of a participant, cached after first use
func (s *Signer) KeyPair(participantId string) (*KeyPair, error) {
	s.Lock()
	defer s.Unlock()

	if k, ok := s.keys[participantId]; ok {
		return k, nil
	}
	k, err := Derive(s.secret, participantId)
	if nil != err {
		return nil, err
	}
	s.keys[participantId] = k
	return k, nil
}

// Sign - sign a message as a participant
func (s *Signer) Sign(participantId string, message []byte) ([]byte, ed25519.PublicKey, error) {
	k, err := s.KeyPair(participantId)
	if nil != err {
		return nil, nil, err
	}
	return ed25519.Sign(k.PrivateKey, message), k.PublicKey, nil
}

// Verify - check a signature made by Sign
func Verify(publicKey ed25519.PublicKey, message []byte, signature []byte) error {
	if ed25519.PublicKeySize != len(publicKey) || !ed25519.Verify(publicKey, message, signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}
