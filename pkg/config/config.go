// Package config loads engine settings from the environment.
//
// An optional .env file is read first with godotenv (existing variables
// win), then the variables below are decoded with cleanenv:
//
//	BCOS_TX_SUITE               standard | national        (default standard)
//	BCOS_TX_CHAIN_ID            chain id bound into v       (default 0, unbound)
//	BCOS_TX_STRICT              reject high-s signatures    (default true)
//	BCOS_TX_PRIVATE_KEY         hex or WIF private key      (optional)
//	BCOS_TX_BLOCK_LIMIT_OFFSET  blocks added to the height  (default 1000)
//	LOG_FORMAT, LOG_LEVEL, LOG_OUTPUT                       (see package log)
package config

import (
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/log"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// Config holds the engine settings.
type Config struct {
	Suite            string `env:"BCOS_TX_SUITE" env-default:"standard" env-description:"transaction suite: standard or national"`
	ChainID          uint64 `env:"BCOS_TX_CHAIN_ID" env-default:"0" env-description:"chain id bound into standard signatures"`
	Strict           bool   `env:"BCOS_TX_STRICT" env-default:"true" env-description:"reject signatures with s above half order"`
	PrivateKey       string `env:"BCOS_TX_PRIVATE_KEY" env-description:"hex or WIF private key"`
	BlockLimitOffset uint64 `env:"BCOS_TX_BLOCK_LIMIT_OFFSET" env-default:"1000" env-description:"blocks added to the current height"`

	Log log.Config
}

// Load reads dotenvPath (skipped when empty or missing) and then the
// environment.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "load %s", dotenvPath)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the suite and chain id combination.
func (c *Config) Validate() error {
	suite, err := tx.ParseSuite(c.Suite)
	if err != nil {
		return err
	}
	if suite == tx.SuiteNational && c.ChainID != 0 {
		return errors.New("BCOS_TX_CHAIN_ID must be 0 for the national suite")
	}
	if c.ChainID > tx.MaxChainID {
		return errors.Errorf("BCOS_TX_CHAIN_ID %d exceeds %d", c.ChainID, tx.MaxChainID)
	}
	return nil
}

// TxSuite returns the configured suite.
func (c *Config) TxSuite() tx.Suite {
	suite, err := tx.ParseSuite(c.Suite)
	if err != nil {
		return tx.SuiteStandard
	}
	return suite
}

// Usage returns a description of every variable, for --help output.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
