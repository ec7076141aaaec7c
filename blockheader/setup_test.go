// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockheader_test

import (
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/supplyledger/blockheader"
	"github.com/bitmark-inc/supplyledger/fixtures"
	"github.com/bitmark-inc/supplyledger/mocks"
)

func TestNewReadFailure(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	readFailed := errors.New("disk read failed")

	h := mocks.NewMockHandle(ctl)
	h.EXPECT().Get("blockchain:latest").Return(nil, readFailed).Times(1)

	c, err := blockheader.New(logger.New(fixtures.LogCategory), h, nil, "validator-1")
	assert.Nil(t, c, "chain returned")
	assert.Equal(t, readFailed, errors.Cause(err), "wrong error")
}

func TestNewCorruptPointer(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := mocks.NewMockHandle(ctl)
	h.EXPECT().Get("blockchain:latest").Return([]byte("{not json"), nil).Times(1)

	_, err := blockheader.New(logger.New(fixtures.LogCategory), h, nil, "validator-1")
	assert.NotNil(t, err, "corrupt latest pointer accepted")
}

func TestNewEmptyStore(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := mocks.NewMockHandle(ctl)
	h.EXPECT().Get("blockchain:latest").Return(nil, nil).Times(1)

	c, err := blockheader.New(logger.New(fixtures.LogCategory), h, nil, "validator-1")
	assert.Nil(t, err, "new")
	height, _ := c.Get()
	assert.Equal(t, uint64(0), height, "empty store starts at genesis")
}
