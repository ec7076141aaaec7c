// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"

	"github.com/bitmark-inc/supplyledger/constants"
	"github.com/bitmark-inc/supplyledger/fault"
	"github.com/bitmark-inc/supplyledger/product"
	"github.com/bitmark-inc/supplyledger/role"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "supplyledger.leveldb"
	defaultSigningKeyFile   = "signing.key"
	defaultValidatorId      = "supplychain-validator"

	defaultAssemblyInterval  = int(constants.AssemblyInterval / time.Second)
	defaultPendingExpiry     = int(constants.PendingExpiry / time.Second)
	defaultReconcileInterval = int(constants.ReconcileInterval / time.Second)
	defaultReconcileRate     = 10.0 // records per second
	defaultReconcileBurst    = 10

	defaultLogDirectory = "log"
	defaultLogFile      = "supplychaind.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the LevelDB files
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// AssemblyType - local pending pool settings, times in seconds
type AssemblyType struct {
	Interval      int `gluamapper:"interval" json:"interval"`
	PendingExpiry int `gluamapper:"pending_expiry" json:"pending_expiry"`
}

// ReconcileType - resubmission of unconfirmed records
type ReconcileType struct {
	Interval int     `gluamapper:"interval" json:"interval"`
	Rate     float64 `gluamapper:"rate" json:"rate"`
	Burst    int     `gluamapper:"burst" json:"burst"`
}

// InventoryType - stock status settings
type InventoryType struct {
	LowStockThreshold int64 `gluamapper:"low_stock_threshold" json:"low_stock_threshold"`
}

// Configuration - everything read from the configuration file
type Configuration struct {
	DataDirectory  string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile        string               `gluamapper:"pidfile" json:"pidfile"`
	Database       DatabaseType         `gluamapper:"database" json:"database"`
	SigningKeyFile string               `gluamapper:"signing_key_file" json:"signing_key_file"`
	ValidatorId    string               `gluamapper:"validator_id" json:"validator_id"`
	Assembly       AssemblyType         `gluamapper:"assembly" json:"assembly"`
	Reconcile      ReconcileType        `gluamapper:"reconcile" json:"reconcile"`
	Inventory      InventoryType        `gluamapper:"inventory" json:"inventory"`
	Roles          map[string]string    `gluamapper:"roles" json:"roles"`
	Logging        logger.Configuration `gluamapper:"logging" json:"logging"`
}

// Get - will read decode and verify the configuration
func Get(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory:  defaultDataDirectory,
		PidFile:        "", // no PidFile by default
		SigningKeyFile: defaultSigningKeyFile,
		ValidatorId:    defaultValidatorId,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Assembly: AssemblyType{
			Interval:      defaultAssemblyInterval,
			PendingExpiry: defaultPendingExpiry,
		},

		Reconcile: ReconcileType{
			Interval: defaultReconcileInterval,
			Rate:     defaultReconcileRate,
			Burst:    defaultReconcileBurst,
		},

		Inventory: InventoryType{
			LowStockThreshold: product.DefaultLowStockThreshold,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    make(map[string]string, len(defaultLogLevels)),
		},
	}
	for tag, level := range defaultLogLevels {
		options.Logging.Levels[tag] = level
	}

	if err := ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	if err := options.check(); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.SigningKeyFile,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// values that do not depend on the file system
func (c *Configuration) check() error {
	if err := role.CheckIdentifier(c.ValidatorId); nil != err {
		return errors.Wrap(err, "validator_id")
	}
	if c.Assembly.Interval <= 0 {
		return errors.Wrap(fault.ErrInvalidInterval, "assembly.interval")
	}
	if c.Assembly.PendingExpiry <= 0 {
		return errors.Wrap(fault.ErrInvalidInterval, "assembly.pending_expiry")
	}
	if c.Reconcile.Interval <= 0 {
		return errors.Wrap(fault.ErrInvalidInterval, "reconcile.interval")
	}
	if c.Inventory.LowStockThreshold < 0 {
		return errors.Wrap(fault.ErrInvalidQuantity, "inventory.low_stock_threshold")
	}
	_, err := c.Directory()
	return err
}

// Directory - role directory with the configured extra prefixes
func (c *Configuration) Directory() (role.Directory, error) {
	prefixes, err := c.RolePrefixes()
	if nil != err {
		return nil, err
	}
	directory, err := role.NewPrefixDirectory(prefixes)
	if nil != err {
		return nil, errors.Wrap(err, "roles")
	}
	return directory, nil
}

// RolePrefixes - extra identifier prefixes for the role directory
func (c *Configuration) RolePrefixes() (map[string]role.Role, error) {
	prefixes := make(map[string]role.Role, len(c.Roles))
	for code, name := range c.Roles {
		r, err := role.Parse(name)
		if nil != err {
			return nil, errors.Wrapf(err, "roles.%s", code)
		}
		prefixes[strings.ToUpper(code)] = r
	}
	return prefixes, nil
}

// AssemblyInterval - delay between assembly passes
func (c *Configuration) AssemblyInterval() time.Duration {
	return time.Duration(c.Assembly.Interval) * time.Second
}

// PendingExpiry - lifetime of an unassembled transaction
func (c *Configuration) PendingExpiry() time.Duration {
	return time.Duration(c.Assembly.PendingExpiry) * time.Second
}

// ReconcileInterval - delay between reconciliation passes
func (c *Configuration) ReconcileInterval() time.Duration {
	return time.Duration(c.Reconcile.Interval) * time.Second
}

// EnsureAbsolute - ensure the path is absolute
func EnsureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
