// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"math"

	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
)

// PassingScore - lowest score giving a VERIFIED product
const PassingScore = 60.0

// RequiredRoles - roles whose verification makes up consensus
var RequiredRoles = []role.Role{
	role.Producer,
	role.Collector,
	role.Trader,
	role.Retailer,
}

// Verification - one stored quality verification
type Verification struct {
	VerifierId   string                 `json:"verifierId"`
	VerifierRole role.Role              `json:"verifierRole"`
	Timestamp    int64                  `json:"timestamp"`
	QualityScore float64                `json:"qualityScore"`
	Passed       bool                   `json:"passed"`
	Details      map[string]interface{} `json:"details"`
}

// Request - a verification to be recorded
type Request struct {
	VerifierId   string
	VerifierRole role.Role
	Score        float64
	Passed       bool
	Details      map[string]interface{}
	Timestamp    int64
}

// CanVerify - true for roles that take part in consensus
func CanVerify(r role.Role) bool {
	for _, required := range RequiredRoles {
		if required == r {
			return true
		}
	}
	return false
}

// Passed - a score at or above the passing score
func Passed(score float64) bool {
	return score >= PassingScore
}

// StatusFor - lifecycle status resulting from a verification score
func StatusFor(score float64) product.Status {
	if Passed(score) {
		return product.Verified
	}
	return product.Defective
}

// Average - fold a new score into an average of n scores
//
// the result is rounded to two decimal places
func Average(old float64, n int, score float64) float64 {
	if n <= 0 {
		return round2(score)
	}
	return round2((old*float64(n) + score) / float64(n+1))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
