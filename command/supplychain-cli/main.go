// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/supplyledger/configuration"
	"github.com/bitmark-inc/supplyledger/node"
)

type metadata struct {
	file    string
	config  *configuration.Configuration
	node    *node.Node
	verbose bool
	e       io.Writer
	w       io.Writer
}

// the log channels are shared by every run of the app
var loggerInitialised = false

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if loggerInitialised {
		logger.Finalise()
	}
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "supplychain-cli"
	app.Usage = "operate on a stopped supplychaind database"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	detailsFlag := cli.StringFlag{
		Name:  "details, d",
		Value: "",
		Usage: " extra details as a JSON object `JSON`",
	}
	productFlag := cli.StringFlag{
		Name:  "product, p",
		Value: "",
		Usage: "*product identifier `ID`",
	}
	actorFlag := cli.StringFlag{
		Name:  "actor, a",
		Value: "",
		Usage: "*participant performing the action `ID`",
	}

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "",
			Usage: "*supplychaind configuration `FILE`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "create",
			Usage:     "create a new product",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				actorFlag,
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "*product name `STRING`",
				},
				cli.StringFlag{
					Name:  "description",
					Value: "",
					Usage: " product description `STRING`",
				},
				cli.Int64Flag{
					Name:  "quantity, q",
					Value: 0,
					Usage: " initial quantity `COUNT`",
				},
				cli.Float64Flag{
					Name:  "price",
					Value: 0,
					Usage: " unit price `AMOUNT`",
				},
				cli.StringFlag{
					Name:  "metadata, m",
					Value: "",
					Usage: " product metadata as a JSON object `JSON`",
				},
			},
			Action: runCreate,
		},
		{
			Name:      "transfer",
			Usage:     "transfer a product to the next participant",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				productFlag,
				actorFlag,
				cli.StringFlag{
					Name:  "receiver, r",
					Value: "",
					Usage: "*participant to receive the product `ID`",
				},
				detailsFlag,
			},
			Action: runTransfer,
		},
		{
			Name:      "receive",
			Usage:     "acknowledge a transferred product",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{productFlag, actorFlag, detailsFlag},
			Action:    runReceive,
		},
		{
			Name:      "verify",
			Usage:     "record a quality verification",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				productFlag,
				actorFlag,
				cli.Float64Flag{
					Name:  "score, s",
					Value: -1,
					Usage: "*quality score 0..100 `SCORE`",
				},
				detailsFlag,
			},
			Action: runVerify,
		},
		{
			Name:      "sell",
			Usage:     "sell a product to a consumer",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				productFlag,
				actorFlag,
				cli.StringFlag{
					Name:  "buyer, b",
					Value: "",
					Usage: "*consumer buying the product `ID`",
				},
				detailsFlag,
			},
			Action: runSell,
		},
		{
			Name:      "recall",
			Usage:     "recall a product",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				productFlag,
				actorFlag,
				cli.StringFlag{
					Name:  "reason, r",
					Value: "",
					Usage: "*reason for the recall `STRING`",
				},
				detailsFlag,
			},
			Action: runRecall,
		},
		{
			Name:      "update",
			Usage:     "change name, description, price or metadata",
			ArgsUsage: "\n   (* = required, + = at least one)",
			Flags: []cli.Flag{
				productFlag,
				actorFlag,
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "+new name `STRING`",
				},
				cli.StringFlag{
					Name:  "description",
					Value: "",
					Usage: "+new description `STRING`",
				},
				cli.Float64Flag{
					Name:  "price",
					Value: -1,
					Usage: "+new price `AMOUNT`",
				},
				cli.StringFlag{
					Name:  "metadata, m",
					Value: "",
					Usage: "+metadata changes as a JSON object, null removes a key `JSON`",
				},
				detailsFlag,
			},
			Action: runUpdate,
		},
		{
			Name:      "stock",
			Usage:     "change the quantity held: in, out or adjust",
			ArgsUsage: "in|out|adjust\n   (* = required)",
			Flags: []cli.Flag{
				productFlag,
				actorFlag,
				cli.Int64Flag{
					Name:  "amount, n",
					Value: 0,
					Usage: "*units moved, or the counted quantity for adjust `COUNT`",
				},
				detailsFlag,
			},
			Action: runStock,
		},
		{
			Name:      "provenance",
			Usage:     "show a product with its history and verifications",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{productFlag},
			Action:    runProvenance,
		},
		{
			Name:      "history",
			Usage:     "records a participant took part in",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{actorFlag},
			Action:    runHistory,
		},
		{
			Name:      "owned",
			Usage:     "products currently held by a participant",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				actorFlag,
				cli.IntFlag{
					Name:  "start, s",
					Value: 0,
					Usage: " first item `INDEX`",
				},
				cli.IntFlag{
					Name:  "count, n",
					Value: 20,
					Usage: " maximum items `COUNT`",
				},
			},
			Action: runOwned,
		},
		{
			Name:      "transaction",
			Usage:     "find a confirmed record by transaction hash",
			ArgsUsage: "HASH",
			Action:    runTransaction,
		},
		{
			Name:      "block",
			Usage:     "show one block of the hash chain",
			ArgsUsage: "HEIGHT",
			Action:    runBlock,
		},
		{
			Name:   "verify-chain",
			Usage:  "recompute every block and transaction hash",
			Action: runVerifyChain,
		},
		{
			Name:   "reconcile",
			Usage:  "resubmit unconfirmed records and assemble them into blocks",
			Action: runReconcile,
		},
		{
			Name:      "keypair",
			Usage:     "show the public key used to sign for a participant",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{actorFlag},
			Action:    runKeyPair,
		},
		{
			Name: "version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		if "version" == command || "help" == command || "" == command {
			return nil
		}

		file := c.GlobalString("config-file")
		if "" == file {
			return fmt.Errorf("config-file is required")
		}
		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		config, err := configuration.Get(file, nil)
		if nil != err {
			return err
		}

		if !loggerInitialised {
			if err := logger.Initialise(config.Logging); nil != err {
				return err
			}
			loggerInitialised = true
		}

		c.App.Metadata["config"] = &metadata{
			file:    file,
			config:  config,
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	// release the database
	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok || nil == m.node {
			return nil
		}
		if m.verbose {
			fmt.Fprintf(m.e, "closing database: %s\n", m.config.Database.Name)
		}
		err := m.node.Close()
		m.node = nil
		return err
	}

	return app
}
