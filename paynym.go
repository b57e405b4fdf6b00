// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package walletcore

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/complex-gh/walletcore/coin"
	"github.com/complex-gh/walletcore/curve"
	"github.com/complex-gh/walletcore/hdkey"
	"github.com/complex-gh/walletcore/hdpath"
	"github.com/complex-gh/walletcore/secret"
)

const (
	// paymentCodeVersion is the base58check version byte of BIP47 codes,
	// which makes them start with "PM8T".
	paymentCodeVersion = 0x47
	paymentCodeLen     = 80
	bip47Purpose       = 47
)

// PayNym is a BIP47 reusable payment code with its notification address.
type PayNym struct {
	PaymentCode         string
	NotificationAddress string
}

// DerivePayNym derives the version 1 BIP47 payment code of the first
// Bitcoin account of an English mnemonic. The code packs the public key and
// chain code at m/47'/0'/0'; the notification address is the P2PKH address
// of its first normal child.
func DerivePayNym(phrase, passphrase string) (*PayNym, error) {
	seed, err := SeedFromMnemonic(phrase, passphrase)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(seed)
	return DerivePayNymFromSeed(seed)
}

// DerivePayNymFromSeed is DerivePayNym for a seed produced by any wordlist.
func DerivePayNymFromSeed(seed []byte) (*PayNym, error) {
	master, err := hdkey.NewMaster(seed, curve.Secp256k1)
	if err != nil {
		return nil, fmt.Errorf("could not create master key: %w", err)
	}
	defer master.Zero()

	account, err := hdpath.Resolve(hdpath.Account(bip47Purpose, 0, 0), master)
	if err != nil {
		return nil, fmt.Errorf("could not derive payment code key: %w", err)
	}
	defer account.Zero()

	pub, err := account.PublicKey()
	if err != nil {
		return nil, err
	}

	// version, features, public key, chain code, 13 reserved bytes
	payload := make([]byte, 0, paymentCodeLen)
	payload = append(payload, 0x01, 0x00)
	payload = append(payload, pub...)
	payload = append(payload, account.ChainCode()...)
	payload = append(payload, make([]byte, paymentCodeLen-len(payload))...)

	notify, err := account.DeriveChild(0, false)
	if err != nil {
		return nil, fmt.Errorf("could not derive notification key: %w", err)
	}
	defer notify.Zero()
	notifyPub, err := notify.PublicKey()
	if err != nil {
		return nil, err
	}

	btc, err := coin.Lookup("bitcoin")
	if err != nil {
		return nil, err
	}
	addr, err := coin.AddressFromPublicKey(btc, notifyPub)
	if err != nil {
		return nil, err
	}

	return &PayNym{
		PaymentCode:         base58.CheckEncode(payload, paymentCodeVersion),
		NotificationAddress: addr,
	}, nil
}
