package main

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/suffix-labs/bcos-tx/pkg/api"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

func newEncodeCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode-call <signature> [args...]",
		Short: "ABI-encode call data for a function signature",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.engine.EncodeCall(args[0], stringParams(args[1:])...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(data))
			return nil
		},
	}
}

type signFlags struct {
	key string

	to        string
	signature string
	args      []string
	data      string
	code      string
	types     []string

	gasPrice    string
	gasLimit    string
	value       string
	blockLimit  string
	blockHeight uint64
	randomID    string

	json bool
}

func newSignCmd(a *app) *cobra.Command {
	f := &signFlags{}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Build and sign a transaction",
		Long: `Build and sign a transaction and print its 0x-prefixed wire encoding.

The payload is one of:
  --sig with --arg values       contract call (requires --to)
  --code with --type/--arg       contract deployment (no --to)
  --data                         raw call data or plain transfer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := a.privateKey(f.key)
			if err != nil {
				return err
			}
			opts, err := f.options(a)
			if err != nil {
				return err
			}
			t, err := f.build(a.engine, opts)
			if err != nil {
				return err
			}

			raw, err := a.engine.SignHex(t, priv)
			if err != nil {
				return err
			}
			if f.json {
				return printJSON(cmd, t)
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.key, "key", "", "hex or WIF private key (default BCOS_TX_PRIVATE_KEY)")
	fl.StringVar(&f.to, "to", "", "recipient or contract address")
	fl.StringVar(&f.signature, "sig", "", "function signature, e.g. transfer(address,uint256)")
	fl.StringArrayVar(&f.args, "arg", nil, "call or constructor argument (repeatable)")
	fl.StringVar(&f.data, "data", "", "hex call data")
	fl.StringVar(&f.code, "code", "", "hex contract bytecode for a deployment")
	fl.StringArrayVar(&f.types, "type", nil, "constructor parameter type (repeatable)")
	fl.StringVar(&f.gasPrice, "gas-price", "0", "gas price")
	fl.StringVar(&f.gasLimit, "gas-limit", "", "gas limit (default 100000000)")
	fl.StringVar(&f.value, "value", "0", "transferred value")
	fl.StringVar(&f.blockLimit, "block-limit", "", "absolute block limit")
	fl.Uint64Var(&f.blockHeight, "block-height", 0, "current block height, offset by BCOS_TX_BLOCK_LIMIT_OFFSET")
	fl.StringVar(&f.randomID, "random-id", "", "explicit random id (default random)")
	fl.BoolVar(&f.json, "json", false, "print the signed transaction as JSON")
	return cmd
}

func (f *signFlags) options(a *app) (api.TxOptions, error) {
	opts := api.TxOptions{
		BlockHeight:      f.blockHeight,
		BlockLimitOffset: a.cfg.BlockLimitOffset,
	}
	for _, v := range []struct {
		name string
		in   string
		out  **big.Int
	}{
		{"gas-price", f.gasPrice, &opts.GasPrice},
		{"gas-limit", f.gasLimit, &opts.GasLimit},
		{"value", f.value, &opts.Value},
		{"block-limit", f.blockLimit, &opts.BlockLimit},
		{"random-id", f.randomID, &opts.RandomID},
	} {
		if v.in == "" {
			continue
		}
		n, ok := new(big.Int).SetString(v.in, 0)
		if !ok || n.Sign() < 0 {
			return api.TxOptions{}, errors.Errorf("--%s: invalid non-negative integer %q", v.name, v.in)
		}
		*v.out = n
	}
	return opts, nil
}

func (f *signFlags) build(engine *api.Engine, opts api.TxOptions) (*tx.Transaction, error) {
	switch {
	case f.code != "":
		if f.to != "" || f.signature != "" {
			return nil, errors.New("--code cannot be combined with --to or --sig")
		}
		code, err := hexutil.Decode(f.code)
		if err != nil {
			return nil, errors.Wrap(err, "--code")
		}
		return engine.NewDeploy(code, f.types, stringParams(f.args), opts)

	case f.signature != "":
		to, err := parseAddress(f.to)
		if err != nil {
			return nil, err
		}
		return engine.NewCall(to, f.signature, stringParams(f.args), opts)

	default:
		to, err := parseAddress(f.to)
		if err != nil {
			return nil, err
		}
		var data []byte
		if f.data != "" {
			if data, err = hexutil.Decode(f.data); err != nil {
				return nil, errors.Wrap(err, "--data")
			}
		}
		return engine.NewTransfer(to, data, opts)
	}
}

func newDecodeCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a wire-encoded transaction to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.engine.DecodeHex(args[0])
			if err != nil {
				return err
			}
			if raw {
				fields, err := t.RawJSON()
				if err != nil {
					return err
				}
				return printJSON(cmd, fields)
			}
			return printJSON(cmd, t)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw field list instead of the keyed object")
	return cmd
}

func newRecoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recover <hex>",
		Short: "Recover the sender address of a signed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.engine.DecodeHex(args[0])
			if err != nil {
				return err
			}
			sender, err := a.engine.RecoverSender(t)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sender.Hex())
			return nil
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <hex>",
		Short: "Check the signature and gas of a signed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.engine.DecodeHex(args[0])
			if err != nil {
				return err
			}
			if err := a.engine.Validate(t); err != nil {
				return err
			}
			h, err := a.engine.TransactionHash(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid %s\n", h.Hex())
			return nil
		},
	}
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// stringParams passes CLI arguments through as strings; the ABI encoder
// converts them to the declared parameter types.
func stringParams(args []string) []interface{} {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		params[i] = arg
	}
	return params
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
