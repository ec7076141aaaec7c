// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/supplyledger/lifecycle"
	"github.com/bitmark-inc/supplyledger/product"
)

func runCreate(c *cli.Context) error {

	m := metadataOf(c)

	creator, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	name := c.String("name")
	if "" == name {
		return fmt.Errorf("name is required")
	}
	meta, err := parseObject(c, "metadata")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}

	return printResult(m, n.CreateProduct(creator, &product.Fields{
		Name:        name,
		Description: c.String("description"),
		Quantity:    c.Int64("quantity"),
		Price:       c.Float64("price"),
		Metadata:    meta,
	}))
}

func runTransfer(c *cli.Context) error {

	m := metadataOf(c)

	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}
	from, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	to, err := checkIdentifier(c, "receiver")
	if nil != err {
		return err
	}
	details, err := parseObject(c, "details")
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "product: %s\n", productId)
		fmt.Fprintf(m.e, "sender: %s\n", from)
		fmt.Fprintf(m.e, "receiver: %s\n", to)
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	return printResult(m, n.TransferProduct(productId, from, to, details))
}

func runReceive(c *cli.Context) error {

	m := metadataOf(c)

	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}
	receiver, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	details, err := parseObject(c, "details")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	return printResult(m, n.ReceiveProduct(productId, receiver, details))
}

func runVerify(c *cli.Context) error {

	m := metadataOf(c)

	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}
	verifier, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	if !c.IsSet("score") {
		return fmt.Errorf("score is required")
	}
	details, err := parseObject(c, "details")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	return printResult(m, n.VerifyProduct(productId, verifier, c.Float64("score"), details))
}

func runSell(c *cli.Context) error {

	m := metadataOf(c)

	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}
	seller, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	buyer, err := checkIdentifier(c, "buyer")
	if nil != err {
		return err
	}
	details, err := parseObject(c, "details")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	return printResult(m, n.SellProduct(productId, seller, buyer, details))
}

func runRecall(c *cli.Context) error {

	m := metadataOf(c)

	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}
	actor, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	reason := c.String("reason")
	if "" == reason {
		return fmt.Errorf("reason is required")
	}
	details, err := parseObject(c, "details")
	if nil != err {
		return err
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	return printResult(m, n.RecallProduct(productId, actor, reason, details))
}

func runUpdate(c *cli.Context) error {

	m := metadataOf(c)

	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}
	actor, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	meta, err := parseObject(c, "metadata")
	if nil != err {
		return err
	}
	details, err := parseObject(c, "details")
	if nil != err {
		return err
	}

	changes := &lifecycle.Changes{
		Metadata: meta,
	}
	if c.IsSet("name") {
		name := c.String("name")
		changes.Name = &name
	}
	if c.IsSet("description") {
		description := c.String("description")
		changes.Description = &description
	}
	if c.IsSet("price") {
		price := c.Float64("price")
		changes.Price = &price
	}
	if nil == changes.Name && nil == changes.Description && nil == changes.Price && 0 == len(changes.Metadata) {
		return fmt.Errorf("nothing to update")
	}

	n, err := m.open()
	if nil != err {
		return err
	}
	return printResult(m, n.UpdateProduct(productId, actor, changes, details))
}

func runStock(c *cli.Context) error {

	m := metadataOf(c)

	operation := c.Args().Get(0)
	productId, err := checkIdentifier(c, "product")
	if nil != err {
		return err
	}
	actor, err := checkIdentifier(c, "actor")
	if nil != err {
		return err
	}
	details, err := parseObject(c, "details")
	if nil != err {
		return err
	}
	amount := c.Int64("amount")

	n, err := m.open()
	if nil != err {
		return err
	}

	switch operation {
	case "in":
		return printResult(m, n.StockIn(productId, actor, amount, details))
	case "out":
		return printResult(m, n.StockOut(productId, actor, amount, details))
	case "adjust":
		return printResult(m, n.StockAdjust(productId, actor, amount, details))
	default:
		return fmt.Errorf("stock operation: %q must be one of: in, out, adjust", operation)
	}
}
