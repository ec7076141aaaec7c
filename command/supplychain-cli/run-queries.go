// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/supplyledger/keypair"
)

func runProvenance(c *cli.Context) error {

	m := metadataOf(c)

	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	provenance, err := n.Provenance(productId)
	if nil != err {
		return err
	}
	return printJson(m.w, provenance)
}

func runHistory(c *cli.Context) error {

	m := metadataOf(c)

	participant, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	records, err := n.ParticipantHistory(participant)
	if nil != err {
		return err
	}
	return printJson(m.w, records)
}

func runOwned(c *cli.Context) error {

	m := metadataOf(c)

	owner, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	products, err := n.Owned(owner, c.Int("start"), c.Int("count"))
	if nil != err {
		return err
	}
	return printJson(m.w, products)
}

func runTransaction(c *cli.Context) error {

	m := metadataOf(c)

	hash := c.Args().Get(0)
	if "" == hash {
		return fmt.Errorf("transaction hash is required")
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	record, err := n.Transaction(hash)
	if nil != err {
		return err
	}
	return printJson(m.w, record)
}

func runBlock(c *cli.Context) error {

	m := metadataOf(c)

	height, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
	if nil != err {
		return fmt.Errorf("block height: %q  error: %s", c.Args().Get(0), err)
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	block, err := n.Block(height)
	if nil != err {
		return err
	}
	return printJson(m.w, block)
}

func runVerifyChain(c *cli.Context) error {

	m := metadataOf(c)

	n, err := m.open()
	if nil != err {
		return err
	}
	count, err := n.VerifyChain()
	if nil != err {
		return fmt.Errorf("blocks checked: %d  error: %s", count, err)
	}
	return printJson(m.w, map[string]interface{}{
		"verified": count,
		"height":   n.Height(),
	})
}

func runReconcile(c *cli.Context) error {

	m := metadataOf(c)

	n, err := m.open()
	if nil != err {
		return err
	}
	report, err := n.Reconcile()
	if nil != err {
		return err
	}
	result := n.TriggerAssembly()
	return printJson(m.w, map[string]interface{}{
		"reconcile": report,
		"assembly":  result,
	})
}

func runKeyPair(c *cli.Context) error {

	m := metadataOf(c)

	participant, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}

	secret, err := keypair.ReadSeedFile(m.config.SigningKeyFile)
	if nil != err {
		return err
	}
	keyPair, err := keypair.Derive(secret, participant)
	if nil != err {
		return err
	}
	return printJson(m.w, keyPair.Raw(participant))
}
