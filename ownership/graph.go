// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ownership

import (
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/role"
)

// the only legal transfer edges
var successors = map[role.Role]role.Role{
	role.Producer:  role.Collector,
	role.Collector: role.Trader,
	role.Trader:    role.Retailer,
}

// Successor - the role a holder may transfer to, Unknown if none
func Successor(from role.Role) role.Role {
	if to, ok := successors[from]; ok {
		return to
	}
	return role.Unknown
}

// CanTransfer - nil if from may transfer to to
func CanTransfer(from role.Role, to role.Role) error {
	if !from.Valid() || !to.Valid() {
		return errors.Wrapf(fault.ErrInvalidRole, "%s -> %s", from, to)
	}
	if next, ok := successors[from]; ok && next == to {
		return nil
	}
	return errors.Wrapf(fault.ErrIllegalTransfer, "%s -> %s", from, to)
}

// CanSell - nil only for a retailer selling to a consumer
func CanSell(from role.Role, to role.Role) error {
	if role.Retailer == from && role.Consumer == to {
		return nil
	}
	return errors.Wrapf(fault.ErrIllegalSale, "%s -> %s", from, to)
}
