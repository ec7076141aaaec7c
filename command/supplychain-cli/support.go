// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/lifecycle"
	"github.com/bitmark-inc/supplyledger/node"
	"github.com/bitmark-inc/supplyledger/role"
)

// open the database on first use
func (m *metadata) open() (*node.Node, error) {
	if nil != m.node {
		return m.node, nil
	}
	if m.verbose {
		fmt.Fprintf(m.e, "opening database: %s\n", m.config.Database.Name)
	}
	n, err := node.Open(m.config, false)
	if nil != err {
		return nil, err
	}
	m.node = n
	return n, nil
}

func metadataOf(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

// a required identifier flag
func checkIdentifier(c *cli.Context, name string) (string, error) {
	id := strings.TrimSpace(c.String(name))
	if "" == id {
		return "", fmt.Errorf("%s is required", name)
	}
	if err := role.CheckIdentifier(id); nil != err {
		return "", fmt.Errorf("%s: %q: %s", name, id, err)
	}
	return id, nil
}

// an optional JSON object flag
func parseObject(c *cli.Context, name string) (map[string]interface{}, error) {
	s := strings.TrimSpace(c.String(name))
	if "" == s {
		return nil, nil
	}
	object := map[string]interface{}{}
	if err := json.Unmarshal([]byte(s), &object); nil != err {
		return nil, fmt.Errorf("%s: %s", name, err)
	}
	return object, nil
}

// print the result and turn a failure into an error exit
func printResult(m *metadata, result lifecycle.Result) error {
	if err := printJson(m.w, result); nil != err {
		return err
	}
	if !result.Success {
		return fault.GenericError(result.Message)
	}
	return nil
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
