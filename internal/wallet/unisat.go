package wallet

import (
	"context"
	"fmt"
)

const uniSatObject = "unisat"

// UniSat drives the window.unisat provider.
type UniSat struct {
	b Bridge
}

func NewUniSat(b Bridge) *UniSat { return &UniSat{b: b} }

func (u *UniSat) Name() string { return "UniSat" }

func (u *UniSat) IsInstalled() bool { return u.b != nil && u.b.Has(uniSatObject) }

func (u *UniSat) Connect(ctx context.Context) (string, error) {
	return u.firstAccount(ctx, "requestAccounts")
}

func (u *UniSat) GetAddress(ctx context.Context) (string, error) {
	return u.firstAccount(ctx, "getAccounts")
}

func (u *UniSat) Send(ctx context.Context, to string, sats int64) (string, error) {
	if err := validateSend(to, sats); err != nil {
		return "", err
	}
	if !u.IsInstalled() {
		return "", ErrNotInstalled
	}
	var txid string
	if err := u.b.Call(ctx, uniSatObject, "sendBitcoin", []any{to, sats}, &txid); err != nil {
		return "", fmt.Errorf("unisat.Send: %w", err)
	}
	return txid, nil
}

func (u *UniSat) GetBalance(ctx context.Context) (Balance, error) {
	if !u.IsInstalled() {
		return Balance{}, ErrNotInstalled
	}
	var bal Balance
	if err := u.b.Call(ctx, uniSatObject, "getBalance", nil, &bal); err != nil {
		return Balance{}, fmt.Errorf("unisat.GetBalance: %w", err)
	}
	return bal, nil
}

func (u *UniSat) firstAccount(ctx context.Context, method string) (string, error) {
	if !u.IsInstalled() {
		return "", ErrNotInstalled
	}
	var accounts []string
	if err := u.b.Call(ctx, uniSatObject, method, nil, &accounts); err != nil {
		return "", fmt.Errorf("unisat.%s: %w", method, err)
	}
	if len(accounts) == 0 {
		return "", ErrNoAccount
	}
	return accounts[0], nil
}
