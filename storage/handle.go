// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

//go:generate mockgen -destination=../mocks/handle.go -package=mocks github.com/bitmark-inc/supplyledger/storage Handle

// Handle - the ordered key-value primitive every other package is
// written against
type Handle interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Has(key string) (bool, error)
	Delete(key string) error
	Map(prefix string, f func(key string, value []byte) error) error
}

// Get - read a value for a given key
//
// a missing key returns nil with no error
func (d *DB) Get(key string) ([]byte, error) {
	d.RLock()
	defer d.RUnlock()

	db, err := d.handle()
	if nil != err {
		return nil, err
	}
	value, err := db.Get([]byte(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	if nil != err {
		return nil, errors.Wrapf(err, "get: %q", key)
	}
	return value, nil
}

// Put - store a key/value pair
func (d *DB) Put(key string, value []byte) error {
	d.RLock()
	defer d.RUnlock()

	db, err := d.handle()
	if nil != err {
		return err
	}
	if err := db.Put([]byte(key), value, nil); nil != err {
		return errors.Wrapf(err, "put: %q", key)
	}
	return nil
}

// Has - check if a key exists
func (d *DB) Has(key string) (bool, error) {
	d.RLock()
	defer d.RUnlock()

	db, err := d.handle()
	if nil != err {
		return false, err
	}
	found, err := db.Has([]byte(key), nil)
	if nil != err {
		return false, errors.Wrapf(err, "has: %q", key)
	}
	return found, nil
}

// Delete - remove a key
func (d *DB) Delete(key string) error {
	d.RLock()
	defer d.RUnlock()

	db, err := d.handle()
	if nil != err {
		return err
	}
	if err := db.Delete([]byte(key), nil); nil != err {
		return errors.Wrapf(err, "delete: %q", key)
	}
	return nil
}

// Map - run a function on all elements whose key starts with prefix,
// in ascending key order
//
// iteration stops at the first error returned by f
func (d *DB) Map(prefix string, f func(key string, value []byte) error) error {
	d.RLock()
	defer d.RUnlock()

	db, err := d.handle()
	if nil != err {
		return err
	}

	iter := db.NewIterator(ldb_util.BytesPrefix([]byte(prefix)), nil)

iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())

		err = f(string(iter.Key()), value)
		if nil != err {
			break iterating
		}
	}
	iter.Release()
	if nil == err {
		err = iter.Error()
	}
	return err
}
