// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/supplyledger/configuration"
	"github.com/bitmark-inc/supplyledger/keypair"
	"github.com/bitmark-inc/supplyledger/node"
)

const (
	signingKeyFilename = "signing.key"
)

// setup command handler
//
// commands that run to create key files these commands cannot
// access any internal database or states or the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-signing-key", "key":
		keyFilename := getFilenameWithDirectory(arguments, signingKeyFilename)

		seed, err := keypair.NewSeed()
		if nil != err {
			fmt.Printf("generate signing key: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}
		if err := keypair.WriteSeedFile(keyFilename, seed); nil != err {
			fmt.Printf("generate signing key: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated signing key: %q\n", keyFilename)

	case "start", "run":
		return false // continue processing

	case "verify-chain", "verify", "reconcile", "pending":
		return false // defer processing until database is loaded

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  gen-signing-key [DIR]      (key)    - create the participant signing seed in: %q\n", "DIR/"+signingKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  verify-chain               (verify) - recompute every block and transaction hash\n")
		fmt.Printf("\n")

		fmt.Printf("  reconcile                           - resubmit unconfirmed records and assemble them\n")
		fmt.Printf("\n")

		fmt.Printf("  pending                             - show block height and gateway counters\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and prefor normal exit from main
	return true
}

// configuration command handler
//
// commands that run to create key and certificate files these
// commands cannot access any internal database or states but have
// access to the configuration file
func processConfigCommand(arguments []string, options *configuration.Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		//arguments = arguments[1:]
	}

	switch command {
	case "config-test", "cfg":
		buffer, err := json.MarshalIndent(options, "", "  ")
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		fmt.Printf("configuration: %s\n", buffer)
		return true

	default:
		return false
	}
}

// data command handler
//
// the internal database and node components are available
func processDataCommand(log *logger.L, arguments []string, n *node.Node) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		//arguments = arguments[1:]
	}

	switch command {
	case "start", "run":
		return false // continue processing

	case "verify-chain", "verify":
		count, err := n.VerifyChain()
		if nil != err {
			log.Errorf("verify chain: blocks checked: %d  error: %s", count, err)
			exitwithstatus.Message("verify chain: blocks checked: %d  error: %s", count, err)
		}
		fmt.Printf("verified %d blocks\n", count)

	case "reconcile":
		report, err := n.Reconcile()
		if nil != err {
			exitwithstatus.Message("reconcile error: %s", err)
		}
		result := n.TriggerAssembly()
		printJson(map[string]interface{}{
			"reconcile": report,
			"assembly":  result,
		})

	case "pending":
		printJson(map[string]interface{}{
			"height":  n.Height(),
			"pending": n.PendingCount(),
			"gateway": n.GatewayStats(),
		})

	default:
		exitwithstatus.Message("error: no such command: %q", command)
	}

	return true
}

// get the filename from first argument, if present, otherwise the default
func getFilenameWithDirectory(arguments []string, name string) string {
	directory := "."
	if len(arguments) >= 1 {
		directory = arguments[0]
	}
	return filepath.Join(directory, name)
}

func printJson(message interface{}) {
	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		fmt.Fprintf(os.Stderr, "json error: %s\n", err)
		return
	}
	fmt.Printf("%s\n", b)
}
