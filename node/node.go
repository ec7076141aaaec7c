// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/supplyledger/background"
	"github.com/bitmark-inc/supplyledger/blockheader"
	"github.com/bitmark-inc/supplyledger/configuration"
	"github.com/bitmark-inc/supplyledger/consensus"
	"github.com/bitmark-inc/supplyledger/constants"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/keypair"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/lifecycle"
	"github.com/bitmark-inc/supplyledger/ownership"
	"github.com/bitmark-inc/supplyledger/pending"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/reservoir"
	"github.com/bitmark-inc/supplyledger/role"
	"github.com/bitmark-inc/supplyledger/storage"
)

// Settings - tunables taken from the configuration
type Settings struct {
	ValidatorId       string
	LowStockThreshold int64
	AssemblyInterval  time.Duration
	PendingExpiry     time.Duration
	ReconcileInterval time.Duration
	ReconcileRate     float64
	ReconcileBurst    int
}

// SettingsFrom - extract the node settings from a configuration
func SettingsFrom(c *configuration.Configuration) Settings {
	return Settings{
		ValidatorId:       c.ValidatorId,
		LowStockThreshold: c.Inventory.LowStockThreshold,
		AssemblyInterval:  c.AssemblyInterval(),
		PendingExpiry:     c.PendingExpiry(),
		ReconcileInterval: c.ReconcileInterval(),
		ReconcileRate:     c.Reconcile.Rate,
		ReconcileBurst:    c.Reconcile.Burst,
	}
}

// Node - all components of one ledger node
type Node struct {
	sync.Mutex

	log        *logger.L
	db         *storage.DB
	directory  role.Directory
	products   *product.Store
	ledger     *ledger.Ledger
	chain      *blockheader.Chain
	engine     *consensus.Engine
	owners     ownership.Ownership
	pool       *pending.Pool
	gateway    *reservoir.Gateway
	machine    *lifecycle.Machine
	assembler  *pending.Assembler
	reconciler *reservoir.Reconciler
	background *background.T
}

// Open - open the database and signing key named by the configuration
func Open(c *configuration.Configuration, readOnly bool) (*Node, error) {
	log := logger.New("node")

	directory, err := c.Directory()
	if nil != err {
		return nil, err
	}

	secret, err := keypair.ReadSeedFile(c.SigningKeyFile)
	if nil != err {
		log.Errorf("signing key: %q  error: %s", c.SigningKeyFile, err)
		return nil, err
	}

	db, err := storage.Open(c.Database.Name, readOnly, logger.New("storage"))
	if nil != err {
		log.Errorf("database: %q  error: %s", c.Database.Name, err)
		return nil, err
	}

	n, err := New(db, directory, secret, SettingsFrom(c))
	if nil != err {
		db.Close()
		return nil, err
	}
	n.db = db
	return n, nil
}

// New - wire every component over a storage handle
func New(handle storage.Handle, directory role.Directory, secret []byte, s Settings) (*Node, error) {
	if nil == handle || nil == directory {
		return nil, fault.ErrMissingParameters
	}

	if s.AssemblyInterval <= 0 {
		s.AssemblyInterval = constants.AssemblyInterval
	}
	if s.ReconcileInterval <= 0 {
		s.ReconcileInterval = constants.ReconcileInterval
	}

	signer, err := keypair.NewSigner(secret)
	if nil != err {
		return nil, err
	}

	n := &Node{
		log:       logger.New("node"),
		directory: directory,
		products:  product.NewStore(handle),
		ledger:    ledger.New(logger.New("ledger"), handle),
		engine:    consensus.New(logger.New("consensus"), handle, directory),
	}

	n.chain, err = blockheader.New(logger.New("chain"), handle, n.ledger, s.ValidatorId)
	if nil != err {
		return nil, err
	}

	n.owners = ownership.New(n.ledger, n.products)
	n.pool = pending.New(logger.New("pending"), n.chain, s.PendingExpiry)
	n.gateway = reservoir.New(logger.New("gateway"), signer, n.pool)
	n.machine = lifecycle.New(logger.New("lifecycle"), directory, n.products, n.ledger, n.engine, n.gateway, s.LowStockThreshold)
	n.assembler = pending.NewAssembler(logger.New("assembler"), n.pool, s.AssemblyInterval)
	n.reconciler = reservoir.NewReconciler(logger.New("reconcile"), n.gateway, n.ledger, s.ReconcileInterval, s.ReconcileRate, s.ReconcileBurst)

	height, digest := n.chain.Get()
	n.log.Infof("block height: %d  latest: %s", height, digest)
	return n, nil
}

// Start - run the assembler and reconciler in the background
func (n *Node) Start() {
	n.Lock()
	defer n.Unlock()

	if nil != n.background {
		return
	}
	processes := background.Processes{
		n.assembler,
		n.reconciler,
	}
	n.background = background.Start(processes, n.log)
	n.log.Info("background processes started")
}

// Stop - halt background processes
func (n *Node) Stop() {
	n.Lock()
	defer n.Unlock()

	if nil == n.background {
		return
	}
	n.background.Stop()
	n.background = nil
	n.log.Info("background processes stopped")
}

// Close - stop and release the database if the node opened it
func (n *Node) Close() error {
	n.Stop()
	if nil == n.db {
		return nil
	}
	return n.db.Close()
}

// Apply - take on the reloadable parts of a new configuration
func (n *Node) Apply(c *configuration.Configuration) {
	s := SettingsFrom(c)
	n.assembler.SetInterval(s.AssemblyInterval)
	n.reconciler.SetInterval(s.ReconcileInterval)
	n.machine.SetLowStockThreshold(s.LowStockThreshold)
	n.log.Infof("applied: assembly: %s  reconcile: %s  low stock: %d", s.AssemblyInterval, s.ReconcileInterval, s.LowStockThreshold)
}
