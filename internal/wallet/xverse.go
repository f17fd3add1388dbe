package wallet

import (
	"context"
	"fmt"
	"strconv"
)

const xverseObject = "XverseProviders.BitcoinProvider"

// Xverse drives the Xverse BitcoinProvider. Every call goes through its
// request(method, params) entry point and returns a {result} envelope.
type Xverse struct {
	b Bridge
}

func NewXverse(b Bridge) *Xverse { return &Xverse{b: b} }

type xverseRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type xverseAddress struct {
	Address string `json:"address"`
	Purpose string `json:"purpose"`
}

type xverseRecipient struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

func (x *Xverse) Name() string { return "Xverse" }

func (x *Xverse) IsInstalled() bool { return x.b != nil && x.b.Has(xverseObject) }

func (x *Xverse) Connect(ctx context.Context) (string, error) {
	return x.paymentAddress(ctx, "getAccounts")
}

func (x *Xverse) GetAddress(ctx context.Context) (string, error) {
	return x.paymentAddress(ctx, "getAddresses")
}

func (x *Xverse) Send(ctx context.Context, to string, sats int64) (string, error) {
	if err := validateSend(to, sats); err != nil {
		return "", err
	}
	var out struct {
		Result struct {
			TxID string `json:"txid"`
		} `json:"result"`
	}
	params := map[string]any{"recipients": []xverseRecipient{{Address: to, Amount: sats}}}
	if err := x.request(ctx, "sendTransfer", params, &out); err != nil {
		return "", err
	}
	return out.Result.TxID, nil
}

func (x *Xverse) GetBalance(ctx context.Context) (Balance, error) {
	var out struct {
		Result struct {
			Confirmed   string `json:"confirmed"`
			Unconfirmed string `json:"unconfirmed"`
			Total       string `json:"total"`
		} `json:"result"`
	}
	if err := x.request(ctx, "getBalance", nil, &out); err != nil {
		return Balance{}, err
	}
	var bal Balance
	var err error
	for _, f := range []struct {
		dst *int64
		src string
	}{
		{&bal.Confirmed, out.Result.Confirmed},
		{&bal.Unconfirmed, out.Result.Unconfirmed},
		{&bal.Total, out.Result.Total},
	} {
		if f.src == "" {
			continue
		}
		if *f.dst, err = strconv.ParseInt(f.src, 10, 64); err != nil {
			return Balance{}, fmt.Errorf("xverse.GetBalance: %w", err)
		}
	}
	return bal, nil
}

func (x *Xverse) paymentAddress(ctx context.Context, method string) (string, error) {
	var out struct {
		Result struct {
			Addresses []xverseAddress `json:"addresses"`
		} `json:"result"`
	}
	params := map[string]any{"purposes": []string{"payment"}}
	if err := x.request(ctx, method, params, &out); err != nil {
		return "", err
	}
	for _, a := range out.Result.Addresses {
		if a.Purpose == "payment" {
			return a.Address, nil
		}
	}
	if len(out.Result.Addresses) > 0 {
		return out.Result.Addresses[0].Address, nil
	}
	return "", ErrNoAccount
}

func (x *Xverse) request(ctx context.Context, method string, params, out any) error {
	if !x.IsInstalled() {
		return ErrNotInstalled
	}
	if err := x.b.Call(ctx, xverseObject, "request", xverseRequest{Method: method, Params: params}, out); err != nil {
		return fmt.Errorf("xverse.%s: %w", method, err)
	}
	return nil
}
