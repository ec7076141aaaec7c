// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lifecycle_test

import (
	"math"
	"os"
	"sync"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/supplyledger/blockdigest"
	"github.com/bitmark-inc/supplyledger/consensus"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/fixtures"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/lifecycle"
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

// records every submitted ledger record
type recorder struct {
	sync.Mutex
	records []*ledger.Record
}

func (r *recorder) Submit(record *ledger.Record) {
	r.Lock()
	r.records = append(r.records, record)
	r.Unlock()
}

func (r *recorder) count() int {
	r.Lock()
	defer r.Unlock()
	return len(r.records)
}

type setup struct {
	handle    storage.Handle
	products  *product.Store
	ledger    *ledger.Ledger
	submitted *recorder
	machine   *lifecycle.Machine
}

func newSetup(t *testing.T, handle storage.Handle) *setup {
	log := logger.New(fixtures.LogCategory)
	directory, err := role.NewPrefixDirectory(nil)
	require.Nil(t, err, "directory")

	s := &setup{
		handle:    handle,
		products:  product.NewStore(handle),
		ledger:    ledger.New(log, handle),
		submitted: &recorder{},
	}
	engine := consensus.New(log, handle, directory)
	s.machine = lifecycle.New(log, directory, s.products, s.ledger, engine, s.submitted, product.DefaultLowStockThreshold)
	return s
}

func create(t *testing.T, s *setup, metadata product.Metadata) *product.Product {
	o, err := s.machine.Create("FARM-001", &product.Fields{
		Name:     "arabica",
		Quantity: 100,
		Price:    12.5,
		Metadata: metadata,
	})
	require.Nil(t, err, "create")
	return o.Product
}

func TestCreate(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())

	p := create(t, s, nil)
	assert.Equal(t, product.Created, p.Status, "status")
	assert.Equal(t, "FARM-001", p.OwnerId, "owner")
	assert.Equal(t, "FARM-001", p.CreatorId, "creator")
	assert.Equal(t, product.InStock, p.StockStatus, "stock status")

	stored, err := s.products.Get(p.Id)
	require.Nil(t, err, "stored")
	assert.Equal(t, p.UpdatedAt, stored.UpdatedAt, "stored update time")

	history, err := s.machine.History(p.Id)
	require.Nil(t, err, "history")
	require.Equal(t, 1, len(history), "one record")
	assert.Equal(t, ledger.Create, history[0].ActionType, "action")
	assert.Equal(t, "FARM-001", history[0].ToParticipantId, "to creator")
	assert.Equal(t, "", history[0].FromParticipantId, "no sender")
	assert.Equal(t, 1, s.submitted.count(), "submitted")

	_, err = s.machine.Create("COLL-001", &product.Fields{Name: "x"})
	assert.Equal(t, fault.ErrNotProducer, err, "collector cannot create")

	_, err = s.machine.Create("XXXX-001", &product.Fields{Name: "x"})
	assert.Equal(t, fault.ErrParticipantNotRegistered, err, "unregistered")

	_, err = s.machine.Create("FARM-001", &product.Fields{Name: " "})
	assert.Equal(t, fault.ErrInvalidName, err, "blank name")

	_, err = s.machine.Create("FARM-001", &product.Fields{
		Name:     "x",
		Metadata: product.Metadata{product.KeyQualityScoreHistory: []interface{}{}},
	})
	assert.Equal(t, fault.ErrReservedMetadataKey, err, "history is reserved")
}

func TestTransferChain(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	o, err := s.machine.Transfer(p.Id, "FARM-001", "COLL-001", nil)
	require.Nil(t, err, "farm to collector")
	assert.Equal(t, "COLL-001", o.Product.OwnerId, "owner")
	assert.Equal(t, product.Transferred, o.Product.Status, "status")

	_, err = s.machine.Transfer(p.Id, "COLL-001", "RETL-001", nil)
	assert.Equal(t, fault.ErrIllegalTransfer, errors.Cause(err), "collector to retailer")

	_, err = s.machine.Transfer(p.Id, "FARM-001", "COLL-002", nil)
	assert.Equal(t, fault.ErrNotOwner, err, "previous owner")

	_, err = s.machine.Transfer(p.Id, "COLL-001", "COLL-001", nil)
	assert.Equal(t, fault.ErrSameParticipant, err, "same participant")

	o, err = s.machine.Receive(p.Id, "COLL-001", map[string]interface{}{"location": "depot"})
	require.Nil(t, err, "receive")
	assert.Equal(t, product.Received, o.Product.Status, "received")
	assert.Equal(t, "FARM-001", o.Record.FromParticipantId, "sender from transfer")

	_, err = s.machine.Receive(p.Id, "COLL-001", nil)
	assert.Equal(t, fault.ErrNotTransferred, err, "already received")

	_, err = s.machine.Transfer(p.Id, "COLL-001", "TRAD-001", nil)
	require.Nil(t, err, "collector to trader")
	_, err = s.machine.Transfer(p.Id, "TRAD-001", "RETL-001", nil)
	require.Nil(t, err, "trader to retailer")

	_, err = s.machine.Transfer(p.Id, "RETL-001", "CONS-001", nil)
	assert.Equal(t, fault.ErrIllegalTransfer, errors.Cause(err), "retailer must sell")

	o, err = s.machine.Sell(p.Id, "RETL-001", "CONS-001", map[string]interface{}{"receipt": "r-1"})
	require.Nil(t, err, "sell")
	assert.Equal(t, product.Sold, o.Product.Status, "sold")
	assert.Equal(t, "CONS-001", o.Product.OwnerId, "consumer owns")

	_, err = s.machine.Sell(p.Id, "CONS-001", "CONS-002", nil)
	assert.Equal(t, fault.ErrAlreadySold, err, "sold twice")

	history, err := s.machine.History(p.Id)
	require.Nil(t, err, "history")
	require.Equal(t, 6, len(history), "records")
	assert.Equal(t, ledger.Sell, history[0].ActionType, "newest first")
	assert.Equal(t, ledger.Create, history[5].ActionType, "oldest last")
	for i := 1; i < len(history); i += 1 {
		assert.True(t, history[i-1].Timestamp > history[i].Timestamp, "strictly decreasing timestamps")
	}

	records, err := s.machine.ParticipantHistory("COLL-001")
	require.Nil(t, err, "participant history")
	assert.Equal(t, 3, len(records), "collector records")
}

func TestVerifyDefectiveThenDuplicate(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	o, err := s.machine.Verify(p.Id, "TRAD-001", 55, nil)
	require.Nil(t, err, "verify")
	assert.Equal(t, product.Defective, o.Product.Status, "below passing score")
	assert.Equal(t, ledger.Verify, o.Record.ActionType, "action")
	assert.Equal(t, false, o.Record.Details["passed"], "not passed")

	_, err = s.machine.Verify(p.Id, "TRAD-001", 90, nil)
	assert.Equal(t, fault.ErrAlreadyVerifiedByUser, err, "same verifier")
	assert.Equal(t, "ALREADY_VERIFIED_BY_USER", lifecycle.Response(nil, err).Message, "reason code")

	_, err = s.machine.Verify(p.Id, "TRAD-002", 90, nil)
	assert.Equal(t, fault.ErrAlreadyVerifiedByRole, err, "same role")

	_, err = s.machine.Verify(p.Id, "FARM-001", 90, nil)
	assert.Equal(t, fault.ErrCreatorCannotVerifyOwn, err, "creator")

	_, err = s.machine.Verify(p.Id, "CONS-001", 90, nil)
	assert.Equal(t, fault.ErrRoleCannotVerify, err, "consumer")

	_, err = s.machine.Verify(p.Id, "COLL-001", 101, nil)
	assert.Equal(t, fault.ErrInvalidScore, err, "out of range")
}

func TestVerifyAveraging(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, product.Metadata{product.KeyQualityScore: 80.0})
	require.NotNil(t, p.InitialQualityScore, "initial score")

	o, err := s.machine.Verify(p.Id, "COLL-001", 90, nil)
	require.Nil(t, err, "first verification")
	score, _ := o.Product.Metadata.QualityScore()
	assert.Equal(t, 85.0, score, "second score")
	assert.Equal(t, product.Verified, o.Product.Status, "verified")

	o, err = s.machine.Verify(p.Id, "TRAD-001", 70, nil)
	require.Nil(t, err, "second verification")
	score, _ = o.Product.Metadata.QualityScore()
	assert.Equal(t, 80.0, score, "third score")

	stored, err := s.machine.Product(p.Id)
	require.Nil(t, err, "product")
	history, err := stored.Metadata.History()
	require.Nil(t, err, "history")
	assert.Equal(t, 3, len(history), "creation plus two verifications")

	verifications, err := s.machine.Verifications(p.Id)
	require.Nil(t, err, "verifications")
	assert.Equal(t, 2, len(verifications), "stored verifications")

	result, err := s.machine.Consensus(p.Id)
	require.Nil(t, err, "consensus")
	assert.False(t, result.Achieved, "retailer missing")
	assert.Equal(t, []role.Role{role.Retailer}, result.MissingRoles, "missing")

	_, err = s.machine.Verify(p.Id, "RETL-001", 65, nil)
	require.Nil(t, err, "retailer verification")
	result, err = s.machine.Consensus(p.Id)
	require.Nil(t, err, "consensus")
	assert.True(t, result.Achieved, "achieved")
}

func TestRecall(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	_, err := s.machine.Transfer(p.Id, "FARM-001", "COLL-001", nil)
	require.Nil(t, err, "transfer")

	_, err = s.machine.Recall(p.Id, "TRAD-001", "contamination", nil)
	assert.Equal(t, fault.ErrNotCreatorOrOwner, err, "stranger")

	o, err := s.machine.Recall(p.Id, "FARM-001", "contamination", nil)
	require.Nil(t, err, "creator recalls")
	assert.Equal(t, product.Recalled, o.Product.Status, "recalled")
	assert.Equal(t, "contamination", o.Record.Details["reason"], "reason")
	assert.Equal(t, string(product.Transferred), o.Record.Details["previousStatus"], "previous status")

	_, err = s.machine.Transfer(p.Id, "COLL-001", "TRAD-001", nil)
	assert.Equal(t, fault.ErrProductRecalled, err, "recall blocks transfer")

	_, err = s.machine.Verify(p.Id, "TRAD-001", 90, nil)
	assert.Equal(t, fault.ErrProductRecalled, err, "recall blocks verification")

	_, err = s.machine.StockIn(p.Id, "COLL-001", 1, nil)
	assert.Equal(t, fault.ErrProductRecalled, err, "recall blocks stock")

	_, err = s.machine.Recall(p.Id, "COLL-001", "again", nil)
	assert.Equal(t, fault.ErrAlreadyRecalled, err, "twice")
}

func TestUpdate(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, product.Metadata{"colour": "green"})

	name := "arabica grade 1"
	price := 15.0
	o, err := s.machine.Update(p.Id, "FARM-001", &lifecycle.Changes{
		Name:     &name,
		Price:    &price,
		Metadata: product.Metadata{product.KeyLocation: "Chiang Rai", "colour": nil},
	}, nil)
	require.Nil(t, err, "update")
	assert.Equal(t, name, o.Product.Name, "name")
	assert.Equal(t, price, o.Product.Price, "price")
	assert.Equal(t, product.Created, o.Product.Status, "status unchanged")
	assert.Equal(t, "Chiang Rai", o.Product.Metadata[product.KeyLocation], "location")
	_, ok := o.Product.Metadata["colour"]
	assert.False(t, ok, "nil removes a key")

	_, err = s.machine.Update(p.Id, "FARM-001", &lifecycle.Changes{
		Metadata: product.Metadata{product.KeyQualityScore: 99.0},
	}, nil)
	assert.Equal(t, fault.ErrReservedMetadataKey, err, "quality score reserved")

	_, err = s.machine.Update(p.Id, "COLL-001", &lifecycle.Changes{Name: &name}, nil)
	assert.Equal(t, fault.ErrNotOwner, err, "not owner")

	_, err = s.machine.Update(p.Id, "FARM-001", &lifecycle.Changes{
		Metadata: product.Metadata{product.KeyProductionDate: "soon"},
	}, nil)
	assert.Equal(t, fault.ErrInvalidDate, errors.Cause(err), "invalid date")
}

func TestStock(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	o, err := s.machine.StockOut(p.Id, "FARM-001", 95, nil)
	require.Nil(t, err, "stock out")
	assert.Equal(t, int64(5), o.Product.Quantity, "quantity")
	assert.Equal(t, product.LowStock, o.Product.StockStatus, "low")
	assert.Equal(t, product.Created, o.Product.Status, "lifecycle status unchanged")
	assert.Equal(t, float64(100), o.Record.Details["previousQuantity"], "previous quantity")

	_, err = s.machine.StockOut(p.Id, "FARM-001", 6, nil)
	assert.Equal(t, fault.ErrInsufficientStock, err, "insufficient")

	_, err = s.machine.StockIn(p.Id, "FARM-001", 0, nil)
	assert.Equal(t, fault.ErrInvalidAmount, err, "zero amount")

	o, err = s.machine.StockAdjust(p.Id, "FARM-001", 0, nil)
	require.Nil(t, err, "adjust")
	assert.Equal(t, product.OutOfStock, o.Product.StockStatus, "out of stock")

	_, err = s.machine.StockAdjust(p.Id, "FARM-001", -1, nil)
	assert.Equal(t, fault.ErrInvalidQuantity, err, "negative")

	o, err = s.machine.StockIn(p.Id, "FARM-001", 50, nil)
	require.Nil(t, err, "stock in")
	assert.Equal(t, product.InStock, o.Product.StockStatus, "in stock")

	r := lifecycle.Response(o, nil)
	assert.True(t, r.Success, "success")
	assert.Equal(t, "STOCK_IN accepted", r.Message, "message")
	assert.Equal(t, o.Record.Id, r.TransactionId, "transaction id")
}

func TestConcurrentSameRoleVerification(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i += 1 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verifier := []string{"COLL-001", "COLL-002", "COLL-003", "COLL-004", "COLL-005"}[i%5]
			_, err := s.machine.Verify(p.Id, verifier, 75, nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if nil == err {
			succeeded += 1
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one verification per role")

	verifications, err := s.machine.Verifications(p.Id)
	require.Nil(t, err, "verifications")
	assert.Equal(t, 1, len(verifications), "one stored")
}

func TestReconstruction(t *testing.T) {
	db := fixtures.NewStore()
	s := newSetup(t, db)
	p := create(t, s, nil)

	_, err := s.machine.Transfer(p.Id, "FARM-001", "COLL-001", nil)
	require.Nil(t, err, "transfer")

	require.Nil(t, db.Delete(product.Key(p.Id)), "drop snapshot")

	rebuilt, err := s.machine.Product(p.Id)
	require.Nil(t, err, "rebuilt")
	assert.True(t, rebuilt.Reconstructed, "flagged")
	assert.Equal(t, "COLL-001", rebuilt.OwnerId, "owner from transfer")
	assert.Equal(t, "FARM-001", rebuilt.CreatorId, "creator")
	assert.Equal(t, "arabica", rebuilt.Name, "name from create")
	assert.Equal(t, int64(100), rebuilt.Quantity, "quantity from create")
	assert.Equal(t, product.Transferred, rebuilt.Status, "status")

	found, err := s.products.Exists(p.Id)
	require.Nil(t, err, "exists")
	assert.True(t, found, "snapshot persisted")

	_, err = s.machine.Product("no-such-product")
	assert.Equal(t, fault.ErrProductNotFound, err, "unknown product")
}

func TestReconstructionKeepsQualityAverage(t *testing.T) {
	db := fixtures.NewStore()
	s := newSetup(t, db)
	p := create(t, s, product.Metadata{product.KeyQualityScore: 80.0})

	o, err := s.machine.Verify(p.Id, "COLL-001", 90, nil)
	require.Nil(t, err, "first verification")
	score, _ := o.Product.Metadata.QualityScore()
	assert.Equal(t, 85.0, score, "average before rebuild")

	require.Nil(t, db.Delete(product.Key(p.Id)), "drop snapshot")

	rebuilt, err := s.machine.Product(p.Id)
	require.Nil(t, err, "rebuilt")
	require.NotNil(t, rebuilt.InitialQualityScore, "initial score replayed")
	assert.Equal(t, 80.0, *rebuilt.InitialQualityScore, "initial score")
	score, ok := rebuilt.Metadata.QualityScore()
	assert.True(t, ok, "average replayed")
	assert.Equal(t, 85.0, score, "average after rebuild")
	history, err := rebuilt.Metadata.History()
	require.Nil(t, err, "history")
	require.Equal(t, 2, len(history), "creation plus one verification")
	assert.Equal(t, role.Producer, history[0].Role, "creation entry")
	assert.Equal(t, "COLL-001", history[1].ParticipantId, "verification entry")

	o, err = s.machine.Verify(p.Id, "TRAD-001", 70, nil)
	require.Nil(t, err, "verification after rebuild")
	score, _ = o.Product.Metadata.QualityScore()
	assert.Equal(t, 80.0, score, "average after rebuild and verification")
	assert.Equal(t, 80.0, o.Record.Details["averageQualityScore"], "recorded average")
}

func TestReconstructedCannotBeSold(t *testing.T) {
	db := fixtures.NewStore()
	s := newSetup(t, db)
	p := create(t, s, nil)

	for _, step := range [][2]string{{"FARM-001", "COLL-001"}, {"COLL-001", "TRAD-001"}, {"TRAD-001", "RETL-001"}} {
		_, err := s.machine.Transfer(p.Id, step[0], step[1], nil)
		require.Nil(t, err, "transfer")
	}
	require.Nil(t, db.Delete(product.Key(p.Id)), "drop snapshot")

	_, err := s.machine.Sell(p.Id, "RETL-001", "CONS-001", nil)
	assert.Equal(t, fault.ErrReconstructedProduct, err, "reconstructed")
}

func TestStockInOverflow(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	_, err := s.machine.StockAdjust(p.Id, "FARM-001", math.MaxInt64-1, nil)
	require.Nil(t, err, "adjust to near maximum")

	_, err = s.machine.StockIn(p.Id, "FARM-001", 2, nil)
	assert.Equal(t, fault.ErrInvalidAmount, err, "overflowing amount")

	o, err := s.machine.StockIn(p.Id, "FARM-001", 1, nil)
	require.Nil(t, err, "stock in to maximum")
	assert.Equal(t, int64(math.MaxInt64), o.Product.Quantity, "maximum quantity")
}

func TestLowStockThresholdChangedDuringStock(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(0); ; i += 1 {
			select {
			case <-done:
				return
			default:
				s.machine.SetLowStockThreshold(i % 200)
			}
		}
	}()

	for i := 0; i < 50; i += 1 {
		_, err := s.machine.StockIn(p.Id, "FARM-001", 1, nil)
		require.Nil(t, err, "stock in")
	}
	close(done)
	wg.Wait()

	s.machine.SetLowStockThreshold(1000)
	o, err := s.machine.StockIn(p.Id, "FARM-001", 1, nil)
	require.Nil(t, err, "stock in")
	assert.Equal(t, int64(151), o.Product.Quantity, "quantity")
	assert.Equal(t, product.LowStock, o.Product.StockStatus, "new threshold applied")

	s.machine.SetLowStockThreshold(-1)
	o, err = s.machine.StockIn(p.Id, "FARM-001", 1, nil)
	require.Nil(t, err, "stock in")
	assert.Equal(t, product.LowStock, o.Product.StockStatus, "negative threshold ignored")
}

func TestDetailsStoredAsSigned(t *testing.T) {
	s := newSetup(t, fixtures.NewStore())
	p := create(t, s, nil)

	type origin struct {
		Farm string `json:"farm"`
	}
	o, err := s.machine.Transfer(p.Id, "FARM-001", "COLL-001", map[string]interface{}{
		"lot":    int64(1)<<60 + 1,
		"origin": origin{Farm: "north"},
	})
	require.Nil(t, err, "transfer")

	_, isFloat := o.Record.Details["lot"].(float64)
	assert.True(t, isFloat, "numbers normalised")
	assert.Equal(t, map[string]interface{}{"farm": "north"}, o.Record.Details["origin"], "struct normalised")

	stored, err := s.ledger.Get(o.Record.Id)
	require.Nil(t, err, "stored record")

	submitted, err := blockdigest.TransactionHash(o.Record)
	require.Nil(t, err, "submitted hash")
	confirmed, err := blockdigest.TransactionHash(stored)
	require.Nil(t, err, "stored hash")
	assert.Equal(t, submitted, confirmed, "hash stable across storage")

	_, err = s.machine.Transfer(p.Id, "COLL-001", "TRAD-001", map[string]interface{}{
		"bad": math.Inf(1),
	})
	assert.Equal(t, fault.ErrInvalidMetadata, errors.Cause(err), "unencodable details")
}

func TestUnbackedProductState(t *testing.T) {
	faulty := fixtures.NewFaultyStore(fixtures.NewStore())
	s := newSetup(t, faulty)
	p := create(t, s, nil)
	before := s.submitted.count()

	faulty.FailPuts("tx:")
	_, err := s.machine.Transfer(p.Id, "FARM-001", "COLL-001", nil)
	assert.Equal(t, fault.ErrUnbackedProductState, errors.Cause(err), "unbacked")
	assert.True(t, fault.IsErrLag(err), "lag class")
	faulty.Heal()

	stored, err := s.products.Get(p.Id)
	require.Nil(t, err, "product")
	assert.Equal(t, "COLL-001", stored.OwnerId, "product write not rolled back")
	assert.Equal(t, before, s.submitted.count(), "nothing submitted")
}
