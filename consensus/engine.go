// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"encoding/json"
	"sort"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/lockset"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
	"github.com/bitmark-inc/supplyledger/storage"
)

// Engine - records verifications and derives consensus
type Engine struct {
	log       *logger.L
	handle    storage.Handle
	directory role.Directory
	locks     *lockset.Set
}

// New - create an engine
func New(log *logger.L, handle storage.Handle, directory role.Directory) *Engine {
	return &Engine{
		log:       log,
		handle:    handle,
		directory: directory,
		locks:     lockset.New(lockset.DefaultStripes),
	}
}

func verificationPrefix(productId string) string {
	return product.Key(productId) + ":verification:"
}

func verificationKey(productId string, verifierId string) string {
	return verificationPrefix(productId) + verifierId
}

func roleKey(productId string, r role.Role) string {
	return product.Key(productId) + ":role:" + r.String()
}

// RecordVerification - validate and store a verification
//
// on success the product metadata is updated in memory with the new
// average and history entry; persisting the product is left to the
// caller.  The checks and writes for one product run under a lock so
// racing verifications by the same participant or role store at most
// one result.
func (e *Engine) RecordVerification(p *product.Product, req *Request) (*Verification, error) {
	if nil == p || nil == req {
		return nil, fault.ErrMissingParameters
	}

	unlock := e.locks.Lock(p.Id)
	defer unlock()

	found, err := e.handle.Has(verificationKey(p.Id, req.VerifierId))
	if nil != err {
		return nil, err
	}
	if found {
		return nil, fault.ErrAlreadyVerifiedByUser
	}

	existing, err := e.verifications(p.Id)
	if nil != err {
		return nil, err
	}

	roleVerified, err := e.roleVerified(p.Id, req.VerifierRole, existing)
	if nil != err {
		return nil, err
	}
	if roleVerified {
		return nil, fault.ErrAlreadyVerifiedByRole
	}

	if req.VerifierId == p.CreatorId {
		return nil, fault.ErrCreatorCannotVerifyOwn
	}
	if !product.ValidScore(req.Score) {
		return nil, fault.ErrInvalidScore
	}

	n := len(existing)
	if nil != p.InitialQualityScore {
		n += 1
	}
	old, _ := p.Metadata.QualityScore()
	average := Average(old, n, req.Score)

	details := req.Details
	if nil == details {
		details = map[string]interface{}{}
	}
	v := &Verification{
		VerifierId:   req.VerifierId,
		VerifierRole: req.VerifierRole,
		Timestamp:    req.Timestamp,
		QualityScore: req.Score,
		Passed:       req.Passed,
		Details:      details,
	}

	buffer, err := json.Marshal(v)
	if nil != err {
		return nil, err
	}
	if err := e.handle.Put(verificationKey(p.Id, req.VerifierId), buffer); nil != err {
		return nil, err
	}

	// the verification itself is enough to detect the role later
	if err := e.handle.Put(roleKey(p.Id, req.VerifierRole), []byte(req.VerifierId)); nil != err {
		e.log.Warnf("%s: product: %s  role: %s  error: %s", fault.ErrIndexWriteFailed, p.Id, req.VerifierRole, err)
	}

	if nil == p.Metadata {
		p.Metadata = product.Metadata{}
	}
	p.Metadata.SetQualityScore(average)
	err = p.Metadata.AppendHistory(product.QualityEntry{
		Score:         req.Score,
		Role:          req.VerifierRole,
		ParticipantId: req.VerifierId,
		Timestamp:     req.Timestamp,
	})
	if nil != err {
		return nil, err
	}

	e.log.Infof("product: %s  verifier: %s  role: %s  score: %.2f  average: %.2f", p.Id, req.VerifierId, req.VerifierRole, req.Score, average)
	return v, nil
}

// check the role marker, falling back to the stored verifications
func (e *Engine) roleVerified(productId string, r role.Role, existing []*Verification) (bool, error) {
	found, err := e.handle.Has(roleKey(productId, r))
	if nil != err {
		return false, err
	}
	if found {
		return true, nil
	}
	for _, v := range existing {
		if v.VerifierRole == r {
			e.log.Warnf("product: %s  role marker missing for: %s", productId, r)
			if err := e.handle.Put(roleKey(productId, r), []byte(v.VerifierId)); nil != err {
				e.log.Warnf("role marker repair failed: %s", err)
			}
			return true, nil
		}
	}
	return false, nil
}

// Verifications - all verifications of a product, oldest first
func (e *Engine) Verifications(productId string) ([]*Verification, error) {
	return e.verifications(productId)
}

func (e *Engine) verifications(productId string) ([]*Verification, error) {
	list := []*Verification{}
	err := e.handle.Map(verificationPrefix(productId), func(key string, value []byte) error {
		v := &Verification{}
		if err := json.Unmarshal(value, v); nil != err {
			return errors.Wrapf(err, "verification: %q", key)
		}
		list = append(list, v)
		return nil
	})
	if nil != err {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp < list[j].Timestamp
	})
	return list, nil
}
