// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockheader

import (
	"github.com/bitmark-inc/supplyledger/blockdigest"
)

const (
	cacheSize = 10
)

type cachedBlockDigest struct {
	blockNumber uint64
	digest      blockdigest.Digest
}

// small ring of recent block digests, caller holds the chain lock
type digestCache struct {
	cached [cacheSize]cachedBlockDigest
	index  int
}

func (d *digestCache) get(blockNumber uint64) (blockdigest.Digest, bool) {
	for _, c := range d.cached {
		if 0 != c.blockNumber && c.blockNumber == blockNumber {
			return c.digest, true
		}
	}
	return blockdigest.Digest{}, false
}

func (d *digestCache) add(blockNumber uint64, digest blockdigest.Digest) {
	d.cached[d.index] = cachedBlockDigest{
		blockNumber: blockNumber,
		digest:      digest,
	}
	if cacheSize-1 == d.index {
		d.index = 0
	} else {
		d.index++
	}
}
