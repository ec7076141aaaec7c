// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keypair - participant signing keys derived from one seed
//
// The node holds a single master seed.  Each participant's ed25519
// key is derived from SHA3-256(seed ⧺ participantId) so no per
// participant key material is ever stored.
package keypair

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/supplyledger/fault"
)

// seed layout: magic ⧺ 32 bytes of secret ⧺ 4 byte checksum
const (
	secretLength   = 32
	checksumLength = 4
)

var seedMagic = []byte{0x5a, 0xfe, 0x02}

// KeyPair - public and private keys of one participant
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// RawKeyPair - text version of a participant key
type RawKeyPair struct {
	ParticipantId string `json:"participantId"`
	PublicKey     string `json:"publicKey"`
}

// NewSeed - create a new seed from secure random data
func NewSeed() (string, error) {
	secret := make([]byte, secretLength)
	n, err := rand.Read(secret)
	if nil != err {
		return "", err
	}
	if secretLength != n {
		return "", fault.ErrInvalidSeed
	}
	return pack(secret), nil
}

func pack(secret []byte) string {
	packed := append(append([]byte{}, seedMagic...), secret...)
	checksum := sha3.Sum256(packed)
	packed = append(packed, checksum[:checksumLength]...)
	return hex.EncodeToString(packed)
}

// ParseSeed - decode and validate a seed, returning the secret
func ParseSeed(seed string) ([]byte, error) {
	packed, err := hex.DecodeString(strings.TrimSpace(seed))
	if nil != err {
		return nil, fault.ErrInvalidSeed
	}
	if len(seedMagic)+secretLength+checksumLength != len(packed) {
		return nil, fault.ErrInvalidSeed
	}
	if !bytes.Equal(seedMagic, packed[:len(seedMagic)]) {
		return nil, fault.ErrInvalidSeed
	}
	split := len(packed) - checksumLength
	checksum := sha3.Sum256(packed[:split])
	if !bytes.Equal(checksum[:checksumLength], packed[split:]) {
		return nil, fault.ErrInvalidSeed
	}
	return packed[len(seedMagic):split], nil
}

// ReadSeedFile - load a seed written by WriteSeedFile
func ReadSeedFile(name string) ([]byte, error) {
	data, err := ioutil.ReadFile(name)
	if nil != err {
		return nil, err
	}
	return ParseSeed(string(data))
}

// WriteSeedFile - store a new seed readable only by the owner
//
// an existing file is never overwritten
func WriteSeedFile(name string, seed string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if nil != err {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(seed + "\n")
	return err
}

// Derive - the key pair of a participant
func Derive(secret []byte, participantId string) (*KeyPair, error) {
	if secretLength != len(secret) {
		return nil, fault.ErrInvalidSeed
	}
	if "" == participantId {
		return nil, fault.ErrInvalidIdentifier
	}
	h := sha3.New256()
	h.Write(secret)
	h.Write([]byte(participantId))
	privateKey := ed25519.NewKeyFromSeed(h.Sum(nil))
	return &KeyPair{
		PublicKey:  privateKey.Public().(ed25519.PublicKey),
		PrivateKey: privateKey,
	}, nil
}

// Raw - printable form of a participant key
func (k *KeyPair) Raw(participantId string) *RawKeyPair {
	return &RawKeyPair{
		ParticipantId: participantId,
		PublicKey:     hex.EncodeToString(k.PublicKey),
	}
}
