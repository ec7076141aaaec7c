// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/supplyledger/keypair"
	"github.com/bitmark-inc/supplyledger/lifecycle"
	"github.com/bitmark-inc/supplyledger/node"
)

const testConfiguration = `
return {
    data_directory = "%s",
    validator_id = "cli-test",
    logging = {
        levels = {
            DEFAULT = "critical",
        },
    },
}
`

func setupDirectory(t *testing.T) (string, string) {
	dir, err := ioutil.TempDir("", "supplychain-cli-test")
	require.Nil(t, err, "temporary directory")

	seed, err := keypair.NewSeed()
	require.Nil(t, err, "seed")
	require.Nil(t, keypair.WriteSeedFile(filepath.Join(dir, "signing.key"), seed), "seed file")

	configFile := filepath.Join(dir, "supplychaind.conf")
	err = ioutil.WriteFile(configFile, []byte(fmt.Sprintf(testConfiguration, dir)), 0600)
	require.Nil(t, err, "configuration")
	return dir, configFile
}

func run(t *testing.T, configFile string, arguments ...string) (string, error) {
	w := &bytes.Buffer{}
	e := &bytes.Buffer{}
	app := newApp(w, e)
	err := app.Run(append([]string{"supplychain-cli", "--config-file", configFile}, arguments...))
	return w.String(), err
}

func TestCommands(t *testing.T) {
	dir, configFile := setupDirectory(t)
	defer os.RemoveAll(dir)

	out, err := run(t, configFile, "create", "-a", "FARM-001", "-n", "cocoa", "-q", "20", "-m", `{"location":"Accra"}`)
	require.Nil(t, err, "create")
	var result lifecycle.Result
	require.Nil(t, json.Unmarshal([]byte(out), &result), "create result")
	assert.True(t, result.Success, "success")
	productId := result.ProductId

	_, err = run(t, configFile, "transfer", "-p", productId, "-a", "FARM-001", "-r", "RETL-001")
	assert.Equal(t, "ILLEGAL_TRANSFER", fmt.Sprint(err), "illegal edge")

	_, err = run(t, configFile, "transfer", "-p", productId, "-a", "FARM-001", "-r", "COLL-001", "-d", `{"truck":"T-7"}`)
	require.Nil(t, err, "transfer")

	_, err = run(t, configFile, "stock", "-p", productId, "-a", "COLL-001", "-n", "5", "out")
	require.Nil(t, err, "stock out")

	_, err = run(t, configFile, "verify", "-p", productId, "-a", "TRAD-001", "-s", "72")
	require.Nil(t, err, "verify")

	out, err = run(t, configFile, "reconcile")
	require.Nil(t, err, "reconcile")
	assert.Contains(t, out, `"confirmed 4 transactions"`, "assembled")

	out, err = run(t, configFile, "provenance", "-p", productId)
	require.Nil(t, err, "provenance")
	var provenance node.Provenance
	require.Nil(t, json.Unmarshal([]byte(out), &provenance), "provenance result")
	assert.Equal(t, "COLL-001", provenance.Product.OwnerId, "owner")
	assert.Equal(t, int64(15), provenance.Product.Quantity, "quantity")
	assert.Equal(t, 4, len(provenance.History), "history")

	out, err = run(t, configFile, "verify-chain")
	require.Nil(t, err, "verify chain")
	assert.Contains(t, out, `"verified": 4`, "blocks")

	out, err = run(t, configFile, "keypair", "-a", "FARM-001")
	require.Nil(t, err, "keypair")
	assert.Contains(t, out, `"participantId": "FARM-001"`, "participant")

	_, err = run(t, configFile, "stock", "-p", productId, "-a", "COLL-001", "sideways")
	assert.NotNil(t, err, "unknown stock operation")

	_, err = run(t, configFile, "create", "-a", "FARM-001")
	assert.NotNil(t, err, "name required")
}
