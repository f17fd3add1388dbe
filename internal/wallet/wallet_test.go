package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	object, method string
	params         any
}

// scriptedBridge answers calls with canned JSON keyed by object+method.
type scriptedBridge struct {
	installed map[string]bool
	replies   map[string]string
	fail      error
	calls     []call
}

func (b *scriptedBridge) Has(object string) bool { return b.installed[object] }

func (b *scriptedBridge) Call(ctx context.Context, object, method string, params, out any) error {
	b.calls = append(b.calls, call{object, method, params})
	if b.fail != nil {
		return b.fail
	}
	key := object + "." + method
	if req, ok := params.(xverseRequest); ok {
		key += ":" + req.Method
	}
	return json.Unmarshal([]byte(b.replies[key]), out)
}

func TestDetectPicksFirstInstalled(t *testing.T) {
	b := &scriptedBridge{installed: map[string]bool{xverseObject: true}}
	p, err := Detect(context.Background(), Supported(b)...)
	require.NoError(t, err)
	assert.Equal(t, "Xverse", p.Name())

	b.installed[uniSatObject] = true
	p, err = Detect(context.Background(), Supported(b)...)
	require.NoError(t, err)
	assert.Equal(t, "UniSat", p.Name())
}

func TestDetectWithoutWallet(t *testing.T) {
	_, err := Detect(context.Background(), Supported(&scriptedBridge{})...)
	assert.ErrorIs(t, err, ErrNoWallet)

	_, err = Detect(context.Background())
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestUniSat(t *testing.T) {
	b := &scriptedBridge{
		installed: map[string]bool{uniSatObject: true},
		replies: map[string]string{
			"unisat.requestAccounts": `["bc1qalice"]`,
			"unisat.getAccounts":     `["bc1qalice","bc1qbob"]`,
			"unisat.getBalance":      `{"confirmed":1000,"unconfirmed":50,"total":1050}`,
			"unisat.sendBitcoin":     `"txid-1"`,
		},
	}
	u := NewUniSat(b)
	ctx := context.Background()

	addr, err := u.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bc1qalice", addr)

	addr, err = u.GetAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bc1qalice", addr)

	bal, err := u.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, Balance{Confirmed: 1000, Unconfirmed: 50, Total: 1050}, bal)

	txid, err := u.Send(ctx, "bc1qbob", 2000)
	require.NoError(t, err)
	assert.Equal(t, "txid-1", txid)
	assert.Equal(t, []any{"bc1qbob", int64(2000)}, b.calls[len(b.calls)-1].params)
}

func TestXverse(t *testing.T) {
	b := &scriptedBridge{
		installed: map[string]bool{xverseObject: true},
		replies: map[string]string{
			xverseObject + ".request:getAccounts":  `{"result":{"addresses":[{"address":"bc1pord","purpose":"ordinals"},{"address":"bc1qpay","purpose":"payment"}]}}`,
			xverseObject + ".request:getBalance":   `{"result":{"confirmed":"700","unconfirmed":"0","total":"700"}}`,
			xverseObject + ".request:sendTransfer": `{"result":{"txid":"txid-x"}}`,
		},
	}
	x := NewXverse(b)
	ctx := context.Background()

	addr, err := x.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bc1qpay", addr)

	bal, err := x.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(700), bal.Total)

	txid, err := x.Send(ctx, "bc1qdest", 1500)
	require.NoError(t, err)
	assert.Equal(t, "txid-x", txid)
}

func TestProvidersRefuseWhenNotInstalled(t *testing.T) {
	b := &scriptedBridge{}
	for _, p := range Supported(b) {
		_, err := p.Connect(context.Background())
		assert.ErrorIs(t, err, ErrNotInstalled, p.Name())
		_, err = p.GetBalance(context.Background())
		assert.ErrorIs(t, err, ErrNotInstalled, p.Name())
	}
	assert.Empty(t, b.calls)
}

func TestSendValidatesInput(t *testing.T) {
	b := &scriptedBridge{installed: map[string]bool{uniSatObject: true, xverseObject: true}}
	for _, p := range Supported(b) {
		_, err := p.Send(context.Background(), "", 10)
		assert.ErrorIs(t, err, ErrInvalidSend)
		_, err = p.Send(context.Background(), "bc1q", 0)
		assert.ErrorIs(t, err, ErrInvalidSend)
	}
}

func TestBridgeErrorsAreWrapped(t *testing.T) {
	boom := errors.New("user rejected")
	b := &scriptedBridge{installed: map[string]bool{uniSatObject: true}, fail: boom}
	_, err := NewUniSat(b).Send(context.Background(), "bc1q", 1)
	assert.ErrorIs(t, err, boom)
}
