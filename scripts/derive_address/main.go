// derive_address derives the default address of a coin from a BIP39 mnemonic
// for testing.
//
// Usage:
//
//	go run ./scripts/derive_address bitcoin-taproot "your 12 word seed phrase here"
//
// Or with stdin:
//
//	echo "your 12 word seed phrase" | go run ./scripts/derive_address ethereum
//
// The address is derived at the coin's default path, e.g. m/86'/0'/0'/0/0 for
// bitcoin-taproot. Run "walletcore coins" for the list of coin identifiers.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/complex-gh/walletcore"
	"github.com/complex-gh/walletcore/coin"
	"github.com/complex-gh/walletcore/secret"
)

func main() {
	if len(os.Args) < 2 { //nolint:mnd
		usage()
	}
	id := coin.ID(os.Args[1])

	var mnemonic string
	if len(os.Args) > 2 { //nolint:mnd
		mnemonic = strings.Join(os.Args[2:], " ")
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			mnemonic = strings.TrimSpace(scanner.Text())
		}
	}

	if mnemonic == "" {
		usage()
	}

	addr, err := deriveAddress(id, mnemonic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(addr)
}

func deriveAddress(id coin.ID, mnemonic string) (string, error) {
	seed, err := walletcore.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return "", err
	}
	defer secret.Wipe(seed)

	key, err := walletcore.DeriveKey(seed, "", id)
	if err != nil {
		return "", err
	}
	defer key.Close()
	return key.Address()
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: derive_address <coin> \"seed phrase\"")
	fmt.Fprintln(os.Stderr, "   or: echo \"seed phrase\" | derive_address <coin>")
	os.Exit(1)
}
