// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package role

import (
	"strings"

	"github.com/bitmark-inc/supplyledger/fault"
)

// length of the role code at the start of an identifier
const codeLength = 4

//go:generate mockgen -destination=../mocks/directory.go -package=mocks github.com/bitmark-inc/supplyledger/role Directory

// Directory - resolve the role of a participant
type Directory interface {
	RoleOf(participantId string) (Role, error)
}

// DefaultPrefixes - role codes recognised without any configuration
var DefaultPrefixes = map[string]Role{
	"FARM": Producer,
	"PROD": Producer,
	"COLL": Collector,
	"TRAD": Trader,
	"RETL": Retailer,
	"SHOP": Retailer,
	"CONS": Consumer,
	"CUST": Consumer,
}

type prefixDirectory struct {
	prefixes map[string]Role
}

// NewPrefixDirectory - a directory deriving roles from identifier
// prefixes; extra codes are added to (or override) DefaultPrefixes
func NewPrefixDirectory(extra map[string]Role) (Directory, error) {
	prefixes := make(map[string]Role, len(DefaultPrefixes)+len(extra))
	for code, r := range DefaultPrefixes {
		prefixes[code] = r
	}
	for code, r := range extra {
		code = strings.ToUpper(code)
		if codeLength != len(code) || !r.Valid() {
			return nil, fault.ErrInvalidRole
		}
		prefixes[code] = r
	}
	return &prefixDirectory{
		prefixes: prefixes,
	}, nil
}

// RoleOf - derive the role from the identifier prefix
//
// an identifier that matches no prefix is not a registered participant
func (d *prefixDirectory) RoleOf(participantId string) (Role, error) {
	if err := CheckIdentifier(participantId); nil != err {
		return Unknown, err
	}
	if len(participantId) <= codeLength+1 || '-' != participantId[codeLength] {
		return Unknown, fault.ErrParticipantNotRegistered
	}
	r, ok := d.prefixes[strings.ToUpper(participantId[:codeLength])]
	if !ok {
		return Unknown, fault.ErrParticipantNotRegistered
	}
	return r, nil
}

// CheckIdentifier - identifiers are used inside storage keys so must
// be non-empty and free of the key separator
func CheckIdentifier(id string) error {
	if "" == id || strings.ContainsAny(id, ": \t\r\n") {
		return fault.ErrInvalidIdentifier
	}
	return nil
}
