package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidates(t *testing.T) {
	_, err := New(OriginLocal, KindSuccess, "", "body")
	assert.ErrorIs(t, err, ErrMissingTitle)

	_, err = New(OriginLocal, KindSuccess, "title", "  ")
	assert.ErrorIs(t, err, ErrMissingMessage)

	_, err = New(OriginLocal, Kind("fatal"), "title", "body")
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = New(Origin("peer"), KindInfo, "title", "body")
	assert.ErrorIs(t, err, ErrInvalidOrigin)

	n, err := New(OriginLocal, KindSuccess, "Withdrawal submitted", "We received your request.",
		WithAction("View", "/withdrawals"))
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, OriginLocal, n.Origin)
	assert.True(t, n.HasAction())
	assert.False(t, n.Timestamp.IsZero())
}

func TestFromPayload(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("server timestamp wins", func(t *testing.T) {
		n, err := FromPayload(Payload{
			Type:      "success",
			Title:     "Withdrawal Approved",
			Message:   "Your BTC withdrawal has been approved.",
			Timestamp: "2026-02-28T09:30:00Z",
			Data:      json.RawMessage(`{"withdrawalId":"w-1"}`),
			Action:    &Action{Label: "Open", Target: "/withdrawals/w-1"},
		}, now)
		require.NoError(t, err)
		assert.Equal(t, OriginRemote, n.Origin)
		assert.Equal(t, KindSuccess, n.Kind)
		assert.Equal(t, time.Date(2026, 2, 28, 9, 30, 0, 0, time.UTC), n.Timestamp)
		assert.JSONEq(t, `{"withdrawalId":"w-1"}`, string(n.RawPayload))
		assert.Equal(t, "/withdrawals/w-1", n.Action.Target)
	})

	t.Run("bad timestamp and unknown type fall back", func(t *testing.T) {
		n, err := FromPayload(Payload{Type: "shout", Title: "Hi", Message: "There", Timestamp: "yesterday"}, now)
		require.NoError(t, err)
		assert.Equal(t, KindInfo, n.Kind)
		assert.Equal(t, now, n.Timestamp)
		assert.Nil(t, n.Action)
		assert.Nil(t, n.RawPayload)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		_, err := FromPayload(Payload{Type: "info", Message: "x"}, now)
		assert.ErrorIs(t, err, ErrMissingTitle)
	})
}

func TestDecodePayload(t *testing.T) {
	n, err := DecodePayload([]byte(`{"type":"warning","title":"KYC","message":"Documents expiring"}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, KindWarning, n.Kind)

	_, err = DecodePayload([]byte(`not json`), time.Now())
	assert.Error(t, err)
}

func TestToPayloadRoundTripsKindAndAction(t *testing.T) {
	n, err := New(OriginRemote, KindError, "Rejected", "Insufficient balance", WithAction("Top up", "/deposit"))
	require.NoError(t, err)
	p := n.ToPayload()
	assert.Equal(t, "error", p.Type)
	assert.Equal(t, "/deposit", p.Action.Target)
	assert.NotEmpty(t, p.Timestamp)
}
