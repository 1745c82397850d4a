package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suffix-labs/bcos-tx/pkg/api"
	"github.com/suffix-labs/bcos-tx/pkg/config"
	"github.com/suffix-labs/bcos-tx/pkg/crypto"
	"github.com/suffix-labs/bcos-tx/pkg/log"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded the configuration.
type app struct {
	envFile string
	suite   string
	chainID uint64
	strict  bool

	cfg    *config.Config
	logger *zap.Logger
	engine *api.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "bcos-tx",
		Short: "BCOS transaction builder and signer",
		Long: `bcos-tx encodes, signs, decodes and verifies BCOS transactions using
either the standard (secp256k1/Keccak-256) or national (SM2/SM3) suite.

Environment:
` + config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env", ".env", "dotenv file to load before the environment")
	flags.StringVar(&a.suite, "suite", "", "transaction suite: standard or national (overrides BCOS_TX_SUITE)")
	flags.Uint64Var(&a.chainID, "chain-id", 0, "chain id bound into standard signatures (overrides BCOS_TX_CHAIN_ID)")
	flags.BoolVar(&a.strict, "strict", true, "reject signatures with s above half order (overrides BCOS_TX_STRICT)")

	rootCmd.AddCommand(
		newKeygenCmd(a),
		newAddressCmd(a),
		newEncodeCallCmd(a),
		newSignCmd(a),
		newDecodeCmd(a),
		newRecoverCmd(a),
		newVerifyCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// needsConfig reports whether cmd works on transactions or keys. Help,
// version and shell completion run without loading the environment.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("suite") {
		cfg.Suite = a.suite
	}
	if flags.Changed("chain-id") {
		cfg.ChainID = a.chainID
	}
	if flags.Changed("strict") {
		cfg.Strict = a.strict
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.New(cfg.Log)
	if err != nil {
		return err
	}

	engine, err := api.NewEngine(api.Config{
		Suite:   cfg.TxSuite(),
		ChainID: cfg.ChainID,
		Strict:  cfg.Strict,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.engine = engine
	return nil
}

// privateKey returns the raw key from the flag value, falling back to
// BCOS_TX_PRIVATE_KEY.
func (a *app) privateKey(flagValue string) ([]byte, error) {
	s := flagValue
	if s == "" {
		s = a.cfg.PrivateKey
	}
	if s == "" {
		return nil, errNoKey
	}
	return crypto.DecodePrivateKeyString(s)
}
