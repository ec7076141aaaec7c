// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/storage"
)

// Ledger - append-only record store with forward indexes
type Ledger struct {
	log    *logger.L
	handle storage.Handle

	// serialises the single linkage update of a record
	linkLock sync.Mutex
}

// New - create a ledger over a storage handle
func New(log *logger.L, handle storage.Handle) *Ledger {
	return &Ledger{
		log:    log,
		handle: handle,
	}
}

// Append - store a new record and its index entries
//
// the primary record is written first; a failure there is returned
// and nothing else is written.  Index failures after that are logged
// and left for the fallback scan to find, since the store has no
// multi-key transaction to roll back with.
func (l *Ledger) Append(record *Record) (string, error) {
	if nil == record {
		return "", fault.ErrMissingParameters
	}
	if 0 == record.Timestamp {
		record.Timestamp = NowMillis()
	}
	if "" == record.Id {
		record.Id = NewRecordId(record.Timestamp)
	}
	if err := record.validate(); nil != err {
		return "", err
	}
	if nil == record.Details {
		record.Details = map[string]interface{}{}
	}

	key := recordKey(record.Id)
	found, err := l.handle.Has(key)
	if nil != err {
		return "", err
	}
	if found {
		return "", fault.ErrTransactionAlreadyExists
	}

	buffer, err := json.Marshal(record)
	if nil != err {
		return "", err
	}
	if err := l.handle.Put(key, buffer); nil != err {
		l.log.Errorf("append: record: %s  error: %s", record.Id, err)
		return "", err
	}

	id := []byte(record.Id)
	if err := l.handle.Put(productIndexKey(record.ProductId, record.Id), id); nil != err {
		l.log.Warnf("append: %s: record: %s  product: %s  error: %s", fault.ErrIndexWriteFailed, record.Id, record.ProductId, err)
	}
	for _, participant := range participantsOf(record) {
		if err := l.handle.Put(participantIndexKey(participant, record.Id), id); nil != err {
			l.log.Warnf("append: %s: record: %s  participant: %s  error: %s", fault.ErrIndexWriteFailed, record.Id, participant, err)
		}
	}

	l.log.Debugf("append: record: %s  product: %s  action: %s", record.Id, record.ProductId, record.ActionType)
	return record.Id, nil
}

// Get - read one record
func (l *Ledger) Get(recordId string) (*Record, error) {
	buffer, err := l.handle.Get(recordKey(recordId))
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.ErrRecordNotFound
	}
	record := &Record{}
	if err := json.Unmarshal(buffer, record); nil != err {
		return nil, errors.Wrapf(err, "record: %s", recordId)
	}
	return record, nil
}

// AttachLinkage - confirm a record, at most once
func (l *Ledger) AttachLinkage(recordId string, linkage *Linkage) error {
	if nil == linkage || "" == linkage.BlockHash {
		return fault.ErrMissingParameters
	}

	l.linkLock.Lock()
	defer l.linkLock.Unlock()

	record, err := l.Get(recordId)
	if nil != err {
		return err
	}
	if record.IsConfirmed() {
		return fault.ErrAlreadyConfirmed
	}

	record.Linkage = linkage
	record.BlockHash = linkage.BlockHash
	record.TransactionHash = linkage.TransactionHash

	buffer, err := json.Marshal(record)
	if nil != err {
		return err
	}
	if err := l.handle.Put(recordKey(recordId), buffer); nil != err {
		l.log.Errorf("%s: record: %s  error: %s", fault.ErrLinkageWriteFailed, recordId, err)
		return errors.Wrap(fault.ErrLinkageWriteFailed, err.Error())
	}

	if "" != linkage.TransactionHash {
		if err := l.handle.Put(hashKey(linkage.TransactionHash), []byte(recordId)); nil != err {
			l.log.Warnf("link: %s: record: %s  hash: %s  error: %s", fault.ErrIndexWriteFailed, recordId, linkage.TransactionHash, err)
		}
	}

	l.log.Debugf("link: record: %s  block: %d  hash: %s", recordId, linkage.BlockHeight, linkage.BlockHash)
	return nil
}

// QueryByProduct - all records of a product, newest first
func (l *Ledger) QueryByProduct(productId string) ([]*Record, error) {
	return l.query(
		productIndexPrefix(productId),
		func(r *Record) bool { return r.ProductId == productId },
		func(r *Record) []string { return []string{productIndexKey(productId, r.Id)} },
	)
}

// QueryByParticipant - all records a participant took part in, newest first
func (l *Ledger) QueryByParticipant(participantId string) ([]*Record, error) {
	return l.query(
		participantIndexPrefix(participantId),
		func(r *Record) bool {
			return r.FromParticipantId == participantId || r.ToParticipantId == participantId
		},
		func(r *Record) []string { return []string{participantIndexKey(participantId, r.Id)} },
	)
}

// GetByTransactionHash - find a confirmed record from its transaction hash
func (l *Ledger) GetByTransactionHash(transactionHash string) (*Record, error) {
	buffer, err := l.handle.Get(hashKey(transactionHash))
	if nil != err {
		return nil, err
	}
	if nil != buffer {
		return l.Get(string(buffer))
	}

	// index missing: fall back to the full log
	var found *Record
	err = l.scan(func(r *Record) error {
		if nil != r.Linkage && r.Linkage.TransactionHash == transactionHash {
			found = r
			return errStopScan
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	if nil == found {
		return nil, fault.ErrRecordNotFound
	}
	l.log.Warnf("hash index missing for: %s  record: %s", transactionHash, found.Id)
	if err := l.handle.Put(hashKey(transactionHash), []byte(found.Id)); nil != err {
		l.log.Warnf("hash index repair failed: %s", err)
	}
	return found, nil
}

// Unconfirmed - records without linkage, oldest first
func (l *Ledger) Unconfirmed() ([]*Record, error) {
	records := []*Record{}
	err := l.scan(func(r *Record) error {
		if !r.IsConfirmed() {
			records = append(records, r)
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	sort.Sort(sort.Reverse(newestFirst(records)))
	return records, nil
}

// query the index first then reconcile against the full log
//
// records present in the log but missing from the index are added to
// the result and their index entries rewritten
func (l *Ledger) query(prefix string, match func(*Record) bool, indexKeys func(*Record) []string) ([]*Record, error) {

	seen := make(map[string]struct{})
	records := []*Record{}

	err := l.handle.Map(prefix, func(key string, value []byte) error {
		recordId := string(value)
		if _, ok := seen[recordId]; ok {
			return nil
		}
		record, err := l.Get(recordId)
		if fault.IsErrNotFound(err) {
			l.log.Warnf("index: %q refers to missing record: %s", key, recordId)
			return nil
		}
		if nil != err {
			return err
		}
		seen[recordId] = struct{}{}
		records = append(records, record)
		return nil
	})
	if nil != err {
		return nil, err
	}

	// fallback scan
	err = l.scan(func(r *Record) error {
		if _, ok := seen[r.Id]; ok || !match(r) {
			return nil
		}
		seen[r.Id] = struct{}{}
		records = append(records, r)

		l.log.Warnf("reconcile: record: %s missing from index: %q", r.Id, prefix)
		for _, k := range indexKeys(r) {
			if err := l.handle.Put(k, []byte(r.Id)); nil != err {
				l.log.Warnf("reconcile: index repair: %q  error: %s", k, err)
			}
		}
		return nil
	})
	if nil != err {
		return nil, err
	}

	sort.Sort(newestFirst(records))
	return records, nil
}

// to end a scan early without reporting an error
var errStopScan = errors.New("stop scan")

// visit every record in the log
func (l *Ledger) scan(f func(*Record) error) error {
	err := l.handle.Map(recordPrefix, func(key string, value []byte) error {
		record := &Record{}
		if err := json.Unmarshal(value, record); nil != err {
			l.log.Errorf("scan: undecodable record: %q  error: %s", key, err)
			return nil
		}
		return f(record)
	})
	if errStopScan == err {
		return nil
	}
	return err
}

// distinct non-empty participants of a record
func participantsOf(r *Record) []string {
	p := make([]string, 0, 2)
	if "" != r.FromParticipantId {
		p = append(p, r.FromParticipantId)
	}
	if "" != r.ToParticipantId && r.ToParticipantId != r.FromParticipantId {
		p = append(p, r.ToParticipantId)
	}
	return p
}
