package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/suffix-labs/bcos-tx/pkg/crypto"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

var errNoKey = errors.New("no private key: pass --key or set BCOS_TX_PRIVATE_KEY")

func newKeygenCmd(a *app) *cobra.Command {
	var wif bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a private key and print its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, _, err := a.engine.GenerateKey()
			if err != nil {
				return err
			}
			return printKey(cmd, a, priv, true, wif)
		},
	}
	cmd.Flags().BoolVar(&wif, "wif", false, "also print the key in compressed WIF form (standard suite)")
	return cmd
}

func newAddressCmd(a *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "address [key]",
		Short: "Derive the public key and address of a private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				key = args[0]
			}
			priv, err := a.privateKey(key)
			if err != nil {
				return err
			}
			return printKey(cmd, a, priv, false, false)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "hex or WIF private key")
	return cmd
}

// printKey writes the public key and address of priv, preceded by the
// private key itself when showPrivate is set.
func printKey(cmd *cobra.Command, a *app, priv []byte, showPrivate, wif bool) error {
	pub, err := a.engine.PublicKey(priv)
	if err != nil {
		return err
	}
	addr, err := a.engine.Address(priv)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showPrivate {
		fmt.Fprintf(out, "private: %s\n", hexutil.Encode(priv))
	}
	if wif {
		if a.engine.Suite() != tx.SuiteStandard {
			return errors.New("WIF is only defined for the standard suite")
		}
		w, err := crypto.EncodeWIF(priv, true, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wif:     %s\n", w)
	}
	fmt.Fprintf(out, "public:  %s\n", hexutil.Encode(pub))
	fmt.Fprintf(out, "address: %s\n", addr.Hex())
	return nil
}
