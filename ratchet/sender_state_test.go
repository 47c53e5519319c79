package ratchet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSenderState(t *testing.T) {
	var secret Secret
	for i := range secret {
		secret[i] = byte(i + 1)
	}

	state := newSenderState(0, secret)
	assert.NotEqual(t, [32]byte{}, state.currentAESKey)
	assert.NotEqual(t, [32]byte{}, state.currentHMACKey)
	assert.NotEqual(t, state.currentAESKey, state.currentHMACKey)
	assert.EqualValues(t, 0, state.ratchetCounter)

	oldAES := state.currentAESKey
	oldHMAC := state.currentHMACKey
	state.advance()

	assert.NotEqual(t, [32]byte{}, state.currentAESKey)
	assert.NotEqual(t, [32]byte{}, state.currentHMACKey)
	assert.NotEqual(t, oldAES, state.currentAESKey)
	assert.NotEqual(t, oldHMAC, state.currentHMACKey)
	assert.NotEqual(t, state.currentAESKey, state.currentHMACKey)
	assert.EqualValues(t, 1, state.ratchetCounter)
}

func TestSenderStateAdvanceWraps(t *testing.T) {
	var secret Secret
	secret[0] = 0x7a
	state := newSenderState(255, secret)
	state.advance()
	assert.EqualValues(t, 0, state.ratchetCounter)
}
