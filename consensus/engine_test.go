// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus_test

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/supplyledger/consensus"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/fixtures"
	"github.com/bitmark-inc/supplyledger/mocks"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
	"github.com/bitmark-inc/supplyledger/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newEngine(t *testing.T) (*storage.DB, *consensus.Engine) {
	db := fixtures.NewStore()
	directory, err := role.NewPrefixDirectory(nil)
	require.Nil(t, err, "directory")
	return db, consensus.New(logger.New(fixtures.LogCategory), db, directory)
}

func newProduct(initial *float64) *product.Product {
	p := &product.Product{
		Id:        "p1",
		OwnerId:   "FARM-001",
		CreatorId: "FARM-001",
		Name:      "coffee",
		Status:    product.Received,
		Metadata:  product.Metadata{},
	}
	if nil != initial {
		score := *initial
		p.InitialQualityScore = &score
		p.Metadata.SetQualityScore(score)
	}
	return p
}

func request(verifier string, r role.Role, score float64, ts int64) *consensus.Request {
	return &consensus.Request{
		VerifierId:   verifier,
		VerifierRole: r,
		Score:        score,
		Passed:       consensus.Passed(score),
		Timestamp:    ts,
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 85.0, consensus.Average(80, 1, 90), "second score")
	assert.Equal(t, 80.0, consensus.Average(85, 2, 70), "third score")
	assert.Equal(t, 55.0, consensus.Average(0, 0, 55), "first score")
	assert.Equal(t, 66.67, consensus.Average(50, 2, 100), "rounded to two places")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, product.Verified, consensus.StatusFor(60), "boundary")
	assert.Equal(t, product.Defective, consensus.StatusFor(59.99), "below")
	assert.True(t, consensus.CanVerify(role.Retailer), "retailer verifies")
	assert.False(t, consensus.CanVerify(role.Consumer), "consumer does not")
}

func TestRunningAverage(t *testing.T) {
	db, e := newEngine(t)
	defer db.Close()

	initial := 80.0
	p := newProduct(&initial)

	_, err := e.RecordVerification(p, request("COLL-001", role.Collector, 90, 1))
	require.Nil(t, err, "first verification")
	score, ok := p.Metadata.QualityScore()
	require.True(t, ok, "score present")
	assert.Equal(t, 85.0, score, "80 then 90")

	_, err = e.RecordVerification(p, request("TRAD-001", role.Trader, 70, 2))
	require.Nil(t, err, "second verification")
	score, _ = p.Metadata.QualityScore()
	assert.Equal(t, 80.0, score, "85 then 70")

	history, err := p.Metadata.History()
	require.Nil(t, err, "history")
	require.Equal(t, 2, len(history), "history length")
	assert.Equal(t, "TRAD-001", history[1].ParticipantId, "latest history entry")
	assert.Equal(t, role.Trader, history[1].Role, "history role")
}

func TestNoInitialScore(t *testing.T) {
	db, e := newEngine(t)
	defer db.Close()

	p := newProduct(nil)
	_, err := e.RecordVerification(p, request("COLL-001", role.Collector, 70, 1))
	require.Nil(t, err, "first")
	score, _ := p.Metadata.QualityScore()
	assert.Equal(t, 70.0, score, "first score is the average")

	_, err = e.RecordVerification(p, request("TRAD-001", role.Trader, 90, 2))
	require.Nil(t, err, "second")
	score, _ = p.Metadata.QualityScore()
	assert.Equal(t, 80.0, score, "average of two")
}

func TestRejections(t *testing.T) {
	db, e := newEngine(t)
	defer db.Close()

	p := newProduct(nil)

	v, err := e.RecordVerification(p, request("TRAD-001", role.Trader, 55, 1))
	require.Nil(t, err, "first verification")
	assert.False(t, v.Passed, "55 fails")
	assert.Equal(t, product.Defective, consensus.StatusFor(v.QualityScore), "defective")

	_, err = e.RecordVerification(p, request("TRAD-001", role.Trader, 90, 2))
	assert.Equal(t, fault.ErrAlreadyVerifiedByUser, err, "same user")

	_, err = e.RecordVerification(p, request("TRAD-002", role.Trader, 90, 3))
	assert.Equal(t, fault.ErrAlreadyVerifiedByRole, err, "same role")

	_, err = e.RecordVerification(p, request("FARM-001", role.Producer, 90, 4))
	assert.Equal(t, fault.ErrCreatorCannotVerifyOwn, err, "creator")

	_, err = e.RecordVerification(p, request("COLL-001", role.Collector, 101, 5))
	assert.Equal(t, fault.ErrInvalidScore, err, "score too high")

	_, err = e.RecordVerification(p, request("COLL-001", role.Collector, -1, 6))
	assert.Equal(t, fault.ErrInvalidScore, err, "score too low")

	list, err := e.Verifications(p.Id)
	require.Nil(t, err, "verifications")
	assert.Equal(t, 1, len(list), "only one stored")
}

func TestRoleMarkerFallback(t *testing.T) {
	db := fixtures.NewStore()
	defer db.Close()
	faulty := fixtures.NewFaultyStore(db)
	directory, err := role.NewPrefixDirectory(nil)
	require.Nil(t, err, "directory")
	e := consensus.New(logger.New(fixtures.LogCategory), faulty, directory)

	p := newProduct(nil)

	faulty.FailPuts("product:p1:role:")
	_, err = e.RecordVerification(p, request("COLL-001", role.Collector, 70, 1))
	require.Nil(t, err, "marker failure is not returned")
	faulty.Heal()

	_, err = e.RecordVerification(p, request("COLL-002", role.Collector, 90, 2))
	assert.Equal(t, fault.ErrAlreadyVerifiedByRole, err, "role found from stored verifications")

	found, err := db.Has("product:p1:role:COLLECTOR")
	require.Nil(t, err, "has")
	assert.True(t, found, "marker repaired")
}

func TestConcurrentSameRole(t *testing.T) {
	db, e := newEngine(t)
	defer db.Close()

	p := newProduct(nil)

	const n = 20
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i += 1 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// each goroutine has its own copy of the product
			q := *p
			q.Metadata = p.Metadata.Clone()
			_, errs[i] = e.RecordVerification(&q, request(fmt.Sprintf("COLL-%03d", i), role.Collector, 80, int64(i)))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if nil == err {
			successes += 1
		} else {
			assert.Equal(t, fault.ErrAlreadyVerifiedByRole, err, "loser rejected by role")
		}
	}
	assert.Equal(t, 1, successes, "exactly one verification")

	list, err := e.Verifications(p.Id)
	require.Nil(t, err, "verifications")
	assert.Equal(t, 1, len(list), "one stored")
}

func TestConsensus(t *testing.T) {
	db, e := newEngine(t)
	defer db.Close()

	p := newProduct(nil)

	result, err := e.Consensus(p)
	require.Nil(t, err, "empty consensus")
	assert.False(t, result.Achieved, "nothing verified")
	assert.Equal(t, 0.0, result.ConsensusRatio, "no verifications")
	assert.Equal(t, []role.Role{role.Collector, role.Trader, role.Retailer}, result.MissingRoles, "creator role not required")

	_, err = e.RecordVerification(p, request("COLL-001", role.Collector, 90, 1))
	require.Nil(t, err, "collector")
	_, err = e.RecordVerification(p, request("TRAD-001", role.Trader, 40, 2))
	require.Nil(t, err, "trader")

	result, err = e.Consensus(p)
	require.Nil(t, err, "partial consensus")
	assert.False(t, result.Achieved, "retailer missing")
	assert.Equal(t, []role.Role{role.Retailer}, result.MissingRoles, "missing")

	_, err = e.RecordVerification(p, request("RETL-001", role.Retailer, 75, 3))
	require.Nil(t, err, "retailer")

	result, err = e.Consensus(p)
	require.Nil(t, err, "full consensus")
	assert.True(t, result.Achieved, "achieved")
	assert.Equal(t, 3, result.TotalVerifications, "total")
	assert.Equal(t, 2, result.PositiveVerifications, "positive")
	assert.Equal(t, 1, result.NegativeVerifications, "negative")
	assert.InDelta(t, 2.0/3.0, result.ConsensusRatio, 1e-9, "ratio")
	assert.Equal(t, []role.Role{role.Collector, role.Trader, role.Retailer}, result.VerifiedRoles, "verified")
}

func TestConsensusUnknownCreator(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	db := fixtures.NewStore()
	defer db.Close()

	directory := mocks.NewMockDirectory(ctl)
	directory.EXPECT().RoleOf("FARM-001").Return(role.Unknown, fault.ErrParticipantNotRegistered).Times(1)

	e := consensus.New(logger.New(fixtures.LogCategory), db, directory)
	result, err := e.Consensus(newProduct(nil))
	require.Nil(t, err, "consensus")
	assert.Equal(t, 4, len(result.MissingRoles), "all roles required")
}
