package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitChannel(t *testing.T) {
	ch, err := emitChannel("42", false, false)
	require.NoError(t, err)
	assert.Equal(t, "uob:noti:user:42", ch)

	ch, err = emitChannel("42", true, false)
	require.NoError(t, err)
	assert.Equal(t, "uob:noti:admin:42", ch)

	ch, err = emitChannel("", false, true)
	require.NoError(t, err)
	assert.Equal(t, "uob:noti:broadcast", ch)

	_, err = emitChannel("", false, false)
	assert.Error(t, err)
	_, err = emitChannel("42", false, true)
	assert.Error(t, err)
}
