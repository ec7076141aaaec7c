// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package role

import (
	"encoding/json"
	"strings"

	"github.com/bitmark-inc/supplyledger/fault"
)

// Role - position of a participant in the supply chain
type Role int

// all possible roles, in supply-chain order
const (
	Unknown Role = iota
	Producer
	Collector
	Trader
	Retailer
	Consumer
)

var roleNames = [...]string{
	Unknown:   "UNKNOWN",
	Producer:  "PRODUCER",
	Collector: "COLLECTOR",
	Trader:    "TRADER",
	Retailer:  "RETAILER",
	Consumer:  "CONSUMER",
}

// String - name of the role
func (r Role) String() string {
	if r < Unknown || int(r) >= len(roleNames) {
		return roleNames[Unknown]
	}
	return roleNames[r]
}

// Valid - true for every role except Unknown
func (r Role) Valid() bool {
	return r > Unknown && int(r) < len(roleNames)
}

// Parse - convert a role name to a role
func Parse(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == name && Role(i) != Unknown {
			return Role(i), nil
		}
	}
	return Unknown, fault.ErrInvalidRole
}

// MarshalText - roles are stored by name
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText - convert a stored name back to a role
func (r *Role) UnmarshalText(s []byte) error {
	if "UNKNOWN" == string(s) || 0 == len(s) {
		*r = Unknown
		return nil
	}
	role, err := Parse(string(s))
	if nil != err {
		return err
	}
	*r = role
	return nil
}

// MarshalJSON - roles are stored by name
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON - convert a stored name back to a role
func (r *Role) UnmarshalJSON(s []byte) error {
	name := ""
	if err := json.Unmarshal(s, &name); nil != err {
		return err
	}
	return r.UnmarshalText([]byte(name))
}
