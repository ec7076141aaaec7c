// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockheader

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/blockdigest"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/ledger"
	"github.com/bitmark-inc/supplyledger/storage"
)

// Linker - the ledger operations needed to confirm a record
type Linker interface {
	Get(recordId string) (*ledger.Record, error)
	AttachLinkage(recordId string, linkage *ledger.Linkage) error
}

// Chain - block height and previous digest over a storage handle
type Chain struct {
	sync.RWMutex // to allow locking

	log         *logger.L
	handle      storage.Handle
	linker      Linker
	validatorId string

	height        uint64             // this is the current block height
	previousBlock blockdigest.Digest // and its digest

	cache digestCache
}

// New - load the latest block pointer, or start from genesis
func New(log *logger.L, handle storage.Handle, linker Linker, validatorId string) (*Chain, error) {
	c := &Chain{
		log:           log,
		handle:        handle,
		linker:        linker,
		validatorId:   validatorId,
		height:        0,
		previousBlock: blockdigest.Genesis,
	}

	buffer, err := handle.Get(latestKey)
	if nil != err {
		return nil, err
	}
	if nil != buffer {
		var l latest
		if err := json.Unmarshal(buffer, &l); nil != err {
			return nil, errors.Wrap(err, latestKey)
		}
		c.height = l.Height
		c.previousBlock = l.Hash
	}

	log.Infof("block height: %d", c.height)
	log.Infof("previous block: %v", c.previousBlock)

	return c, nil
}

// Get - return the current height and digest
func (c *Chain) Get() (uint64, blockdigest.Digest) {
	c.RLock()
	defer c.RUnlock()
	return c.height, c.previousBlock
}

// Height - return current height
func (c *Chain) Height() uint64 {
	c.RLock()
	defer c.RUnlock()
	return c.height
}

// Confirm - put a record into the next block and attach the linkage
//
// blocks are assembled one at a time so the height sequence has no gaps
func (c *Chain) Confirm(recordId string) (*ledger.Linkage, error) {
	c.Lock()
	defer c.Unlock()

	record, err := c.linker.Get(recordId)
	if nil != err {
		return nil, err
	}
	if record.IsConfirmed() {
		return nil, fault.ErrAlreadyConfirmed
	}

	// the latest block may already hold this record if its linkage
	// write failed last time
	if c.height > 0 {
		last, err := c.Block(c.height)
		if nil != err {
			return nil, err
		}
		if 1 == len(last.Transactions) && record.Id == last.Transactions[0] {
			return c.relink(last)
		}
	}

	txHash, err := blockdigest.TransactionHash(record)
	if nil != err {
		return nil, err
	}

	height := c.height + 1
	blockHash, err := blockdigest.BlockHash(height, record, c.previousBlock)
	if nil != err {
		return nil, err
	}

	block := &Block{
		Height:          height,
		Hash:            blockHash,
		PreviousHash:    c.previousBlock,
		Timestamp:       record.Timestamp,
		Transactions:    []string{record.Id},
		TransactionHash: txHash,
		ValidatorId:     c.validatorId,
	}
	if height <= 1 {
		block.PreviousHash = blockdigest.Genesis
	}

	if err := c.store(block); nil != err {
		c.log.Errorf("block: %d  store error: %s", height, err)
		return nil, errors.Wrap(fault.ErrAssemblyFailed, err.Error())
	}

	c.height = height
	c.previousBlock = blockHash
	c.cache.add(height, blockHash)

	linkage := &ledger.Linkage{
		BlockHeight:     height,
		BlockHash:       blockHash.String(),
		TransactionHash: txHash.String(),
		Timestamp:       record.Timestamp,
		ValidatorId:     c.validatorId,
	}

	// the block exists from here on; a failed linkage is found again
	// by the verifier and the reconciliation scan
	if err := c.linker.AttachLinkage(record.Id, linkage); nil != err {
		c.log.Warnf("block: %d  record: %s  linkage error: %s", height, record.Id, err)
		return nil, err
	}

	c.log.Infof("block: %d  hash: %s  record: %s", height, blockHash, record.Id)
	return linkage, nil
}

// attach the linkage of an existing block, must hold lock
func (c *Chain) relink(block *Block) (*ledger.Linkage, error) {
	linkage := &ledger.Linkage{
		BlockHeight:     block.Height,
		BlockHash:       block.Hash.String(),
		TransactionHash: block.TransactionHash.String(),
		Timestamp:       block.Timestamp,
		ValidatorId:     block.ValidatorId,
	}
	if err := c.linker.AttachLinkage(block.Transactions[0], linkage); nil != err {
		return nil, err
	}
	c.log.Infof("block: %d  relinked record: %s", block.Height, block.Transactions[0])
	return linkage, nil
}

// write block, hash index and finally the latest pointer
func (c *Chain) store(block *Block) error {
	buffer, err := json.Marshal(block)
	if nil != err {
		return err
	}
	if err := c.handle.Put(blockKey(block.Height), buffer); nil != err {
		return err
	}
	height := strconv.FormatUint(block.Height, 10)
	if err := c.handle.Put(blockHashKey(block.Hash), []byte(height)); nil != err {
		return err
	}
	pointer, err := json.Marshal(latest{Height: block.Height, Hash: block.Hash})
	if nil != err {
		return err
	}
	return c.handle.Put(latestKey, pointer)
}

// Block - fetch a stored block
func (c *Chain) Block(height uint64) (*Block, error) {
	buffer, err := c.handle.Get(blockKey(height))
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.ErrBlockNotFound
	}
	block := &Block{}
	if err := json.Unmarshal(buffer, block); nil != err {
		return nil, errors.Wrapf(err, "block: %d", height)
	}
	return block, nil
}

// BlockByHash - fetch a stored block from its digest
func (c *Chain) BlockByHash(digest blockdigest.Digest) (*Block, error) {
	buffer, err := c.handle.Get(blockHashKey(digest))
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.ErrBlockNotFound
	}
	height, err := strconv.ParseUint(string(buffer), 10, 64)
	if nil != err {
		return nil, errors.Wrapf(err, "block hash: %s", digest)
	}
	return c.Block(height)
}

// DigestForBlock - return the digest for a specific block number
func (c *Chain) DigestForBlock(number uint64) (blockdigest.Digest, error) {
	if 0 == number {
		return blockdigest.Genesis, nil
	}

	c.Lock()
	defer c.Unlock()

	if digest, ok := c.cache.get(number); ok {
		return digest, nil
	}

	block, err := c.Block(number)
	if nil != err {
		return blockdigest.Digest{}, err
	}
	c.cache.add(number, block.Hash)
	return block.Hash, nil
}
