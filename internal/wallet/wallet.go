// Package wallet talks to browser-extension Bitcoin wallets through a host
// bridge. Each supported wallet is a Provider variant; the one to use is
// picked at runtime by probing which is installed.
package wallet

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoWallet     = errors.New("wallet: no supported wallet installed")
	ErrNotInstalled = errors.New("wallet: provider not installed")
	ErrNoAccount    = errors.New("wallet: no account returned")
	ErrInvalidSend  = errors.New("wallet: recipient and a positive amount are required")
)

// Balance is in satoshis.
type Balance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
	Total       int64 `json:"total"`
}

// Provider is the capability set the app needs from a wallet.
type Provider interface {
	Name() string
	IsInstalled() bool
	Connect(ctx context.Context) (address string, err error)
	Send(ctx context.Context, to string, sats int64) (txid string, err error)
	GetBalance(ctx context.Context) (Balance, error)
	GetAddress(ctx context.Context) (string, error)
}

// Bridge is the host environment hook: it reports whether a global object
// exists and invokes a method on it, decoding the result into out.
type Bridge interface {
	Has(object string) bool
	Call(ctx context.Context, object, method string, params, out any) error
}

// Detect returns the first installed provider, in the order given.
func Detect(ctx context.Context, providers ...Provider) (Provider, error) {
	for _, p := range providers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if p != nil && p.IsInstalled() {
			return p, nil
		}
	}
	return nil, ErrNoWallet
}

// Supported lists every variant bound to b, in detection order.
func Supported(b Bridge) []Provider {
	return []Provider{NewUniSat(b), NewXverse(b)}
}

func validateSend(to string, sats int64) error {
	if to == "" || sats <= 0 {
		return fmt.Errorf("%w: to=%q sats=%d", ErrInvalidSend, to, sats)
	}
	return nil
}
