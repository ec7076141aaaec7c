// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
)

// Result - consensus state of a product, derived on demand
type Result struct {
	Achieved              bool        `json:"achieved"`
	RequiredRoles         []role.Role `json:"requiredRoles"`
	VerifiedRoles         []role.Role `json:"verifiedRoles"`
	MissingRoles          []role.Role `json:"missingRoles"`
	TotalVerifications    int         `json:"totalVerifications"`
	PositiveVerifications int         `json:"positiveVerifications"`
	NegativeVerifications int         `json:"negativeVerifications"`
	ConsensusRatio        float64     `json:"consensusRatio"`
}

// Consensus - compute the consensus of a product
//
// the creator's own role is never required since the creator may
// not verify its own product
func (e *Engine) Consensus(p *product.Product) (*Result, error) {
	verifications, err := e.verifications(p.Id)
	if nil != err {
		return nil, err
	}

	creatorRole := role.Unknown
	if "" != p.CreatorId {
		creatorRole, err = e.directory.RoleOf(p.CreatorId)
		if nil != err {
			e.log.Warnf("product: %s  creator: %s  role error: %s", p.Id, p.CreatorId, err)
			creatorRole = role.Unknown
		}
	}

	verified := make(map[role.Role]bool)
	result := &Result{
		RequiredRoles:      append([]role.Role(nil), RequiredRoles...),
		VerifiedRoles:      []role.Role{},
		MissingRoles:       []role.Role{},
		TotalVerifications: len(verifications),
	}
	for _, v := range verifications {
		verified[v.VerifierRole] = true
		if v.Passed {
			result.PositiveVerifications += 1
		} else {
			result.NegativeVerifications += 1
		}
	}

	for _, r := range RequiredRoles {
		if verified[r] {
			result.VerifiedRoles = append(result.VerifiedRoles, r)
		} else if r != creatorRole {
			result.MissingRoles = append(result.MissingRoles, r)
		}
	}

	result.Achieved = 0 == len(result.MissingRoles)
	if result.TotalVerifications > 0 {
		result.ConsensusRatio = float64(result.PositiveVerifications) / float64(result.TotalVerifications)
	}
	return result, nil
}
