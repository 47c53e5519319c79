package ratchet

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededSecret deterministically derives secrets from a seed byte, mirroring
// the Rust test suite's StdRng::from_seed([seed; 32]) + random_secret.
func seededSecret(seed byte) Secret {
	r := rand.New(rand.NewSource(int64(seed)))
	var s Secret
	_, _ = r.Read(s[:])
	return s
}

// TestBasicRoundTrip mirrors the Rust test_encrypt_decrypt scenario.
func TestBasicRoundTrip(t *testing.T) {
	plaintext := []byte("Whan that Aprille with his shoures soote")
	secret := seededSecret(0x3A)

	ctx := New(secret)
	const senderID SenderID = 42
	ctx.AddReceiveSecret(senderID, 0, secret)

	data := append([]byte{}, plaintext...)
	var mac Mac
	ratchetCounter, frameCounter, err := ctx.Encrypt(data, &mac)
	require.NoError(t, err)
	assert.EqualValues(t, 0, ratchetCounter)
	assert.EqualValues(t, 1, frameCounter)
	assert.NotEqual(t, plaintext, data)

	require.NoError(t, ctx.Decrypt(senderID, ratchetCounter, frameCounter, data, mac))
	assert.Equal(t, plaintext, data)
}

// TestRatchetCrossover mirrors the Rust test_ratchet scenario: a second
// receiver learns the secret only after the sender has advanced, and the
// original context must still decrypt via the catch-up path.
func TestRatchetCrossover(t *testing.T) {
	plaintext := []byte("The droghte of March hath perced to the roote")
	secret := seededSecret(0x42)

	ctx := New(secret)
	const senderID SenderID = 8675309
	ctx.AddReceiveSecret(senderID, 0, secret)

	data := append([]byte{}, plaintext...)
	var mac Mac
	ratchetCounter, frameCounter, err := ctx.Encrypt(data, &mac)
	require.NoError(t, err)
	assert.EqualValues(t, 0, ratchetCounter)
	require.NoError(t, ctx.Decrypt(senderID, ratchetCounter, frameCounter, data, mac))
	assert.Equal(t, plaintext, data)

	ratchetCounter2, secret2 := ctx.AdvanceSendRatchet()

	// A second receiver that only learned the secret after the advance.
	ctx2 := New(seededSecret(0x43))
	ctx2.AddReceiveSecret(senderID, ratchetCounter2, secret2)

	data2 := append([]byte{}, plaintext...)
	var mac2 Mac
	rc2, fc2, err := ctx.Encrypt(data2, &mac2)
	require.NoError(t, err)
	assert.Equal(t, ratchetCounter2, rc2)
	// The original context, still registered at counter 0, must decrypt
	// the post-advance frame via the catch-up path.
	require.NoError(t, ctx.Decrypt(senderID, rc2, fc2, data2, mac2))
	assert.Equal(t, plaintext, data2)

	// The second receiver, registered at the post-advance counter, must
	// decrypt a post-advance frame on the fast path.
	data3 := append([]byte{}, plaintext...)
	rc3, fc3, err := ctx.Encrypt(data3, &mac2)
	require.NoError(t, err)
	assert.Equal(t, ratchetCounter2, rc3)
	require.NoError(t, ctx2.Decrypt(senderID, rc3, fc3, data3, mac2))
	assert.Equal(t, plaintext, data3)
}

// TestSecretRotation mirrors the Rust test_rotate_secret scenario: the frame
// counter survives a ResetSendRatchet untouched.
func TestSecretRotation(t *testing.T) {
	plaintext := []byte("And bathed every veyne in swich licour")
	secret := seededSecret(0x76)

	ctx := New(secret)
	const senderID SenderID = 1392
	ctx.AddReceiveSecret(senderID, 0, secret)

	data := append([]byte{}, plaintext...)
	var mac Mac
	rc, fc, err := ctx.Encrypt(data, &mac)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rc)
	assert.EqualValues(t, 1, fc)
	require.NoError(t, ctx.Decrypt(senderID, rc, fc, data, mac))
	assert.Equal(t, plaintext, data)

	newSecret := seededSecret(0x77)
	ctx.AddReceiveSecret(senderID, 0, newSecret)

	data2 := append([]byte{}, plaintext...)
	var mac2 Mac
	rc2, fc2, err := ctx.Encrypt(data2, &mac2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rc2)
	assert.EqualValues(t, 2, fc2)
	require.NoError(t, ctx.Decrypt(senderID, rc2, fc2, data2, mac2))
	assert.Equal(t, plaintext, data2)

	ctx.ResetSendRatchet(newSecret)

	data3 := append([]byte{}, plaintext...)
	var mac3 Mac
	rc3, fc3, err := ctx.Encrypt(data3, &mac3)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rc3)
	assert.EqualValues(t, 3, fc3)
	require.NoError(t, ctx.Decrypt(senderID, rc3, fc3, data3, mac3))
	assert.Equal(t, plaintext, data3)
}

// TestBadMAC mirrors the Rust test_bad_mac scenario.
func TestBadMAC(t *testing.T) {
	plaintext := []byte("Of which vertu engendred is the flour")
	secret := seededSecret(0x12)

	ctx := New(secret)
	const senderID SenderID = 1492
	ctx.AddReceiveSecret(senderID, 0, secret)

	data := append([]byte{}, plaintext...)
	var mac Mac
	rc, fc, err := ctx.Encrypt(data, &mac)
	require.NoError(t, err)

	mac[0] ^= 0x01
	err = ctx.Decrypt(senderID, rc, fc, data, mac)
	assert.ErrorIs(t, err, ErrNoMatchingReceiverState)

	mac[0] ^= 0x01
	require.NoError(t, ctx.Decrypt(senderID, rc, fc, data, mac))
	assert.Equal(t, plaintext, data)
}

// TestOOOAcrossRatchet mirrors the Rust test_ooo_ratchet scenario: a frame
// from before a ratchet advance, delivered after a frame from after it,
// must still decrypt.
func TestOOOAcrossRatchet(t *testing.T) {
	plaintext := []byte("Whan Zephirus eek with his sweete breeth")
	secret := seededSecret(0x2D)

	ctx := New(secret)
	const senderID SenderID = 8675309
	ctx.AddReceiveSecret(senderID, 0, secret)

	data1 := append([]byte{}, plaintext...)
	var mac1 Mac
	rc1, fc1, err := ctx.Encrypt(data1, &mac1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rc1)

	ctx.AdvanceSendRatchet()

	data2 := append([]byte{}, plaintext...)
	var mac2 Mac
	rc2, fc2, err := ctx.Encrypt(data2, &mac2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rc2)
	require.NoError(t, ctx.Decrypt(senderID, rc2, fc2, data2, mac2))
	assert.Equal(t, plaintext, data2)

	// Decrypt the earlier frame second, out of order.
	require.NoError(t, ctx.Decrypt(senderID, rc1, fc1, data1, mac1))
	assert.Equal(t, plaintext, data1)
}

// TestFrameCounterMonotonicity checks successive Encrypt calls return
// strictly increasing frame counters and that ResetSendRatchet does not
// disturb the sequence.
func TestFrameCounterMonotonicity(t *testing.T) {
	ctx := New(seededSecret(0x01))
	var last FrameCounter
	for i := 0; i < 5; i++ {
		data := []byte("x")
		var mac Mac
		_, fc, err := ctx.Encrypt(data, &mac)
		require.NoError(t, err)
		assert.Greater(t, fc, last)
		last = fc
	}
	ctx.ResetSendRatchet(seededSecret(0x02))
	data := []byte("x")
	var mac Mac
	_, fc, err := ctx.Encrypt(data, &mac)
	require.NoError(t, err)
	assert.Greater(t, fc, last)
}

// TestRetentionBound checks the per-sender sequence never exceeds
// MaxReceiverStatesToRetain and keeps the newest registration at the head.
func TestRetentionBound(t *testing.T) {
	ctx := New(seededSecret(0x09))
	const senderID SenderID = 7

	var lastSecret Secret
	for i := 0; i < MaxReceiverStatesToRetain+3; i++ {
		s := seededSecret(byte(i))
		lastSecret = s
		ctx.AddReceiveSecret(senderID, RatchetCounter(i), s)
	}

	states := ctx.remoteStates[senderID]
	assert.Len(t, states, MaxReceiverStatesToRetain)
	assert.Equal(t, lastSecret, states[0].senderState.currentSecret)
}

// TestEmptyFrame checks a zero-length frame round-trips.
func TestEmptyFrame(t *testing.T) {
	secret := seededSecret(0x55)
	ctx := New(secret)
	const senderID SenderID = 1

	ctx.AddReceiveSecret(senderID, 0, secret)

	var data []byte
	var mac Mac
	rc, fc, err := ctx.Encrypt(data, &mac)
	require.NoError(t, err)
	require.NoError(t, ctx.Decrypt(senderID, rc, fc, data, mac))
	assert.Empty(t, data)
}

// TestUnknownSenderRejected checks decrypt against a sender with no
// registered receiver state fails without mutating the buffer.
func TestUnknownSenderRejected(t *testing.T) {
	ctx := New(seededSecret(0x60))
	data := []byte("hello")
	original := append([]byte{}, data...)
	var mac Mac
	err := ctx.Decrypt(999, 0, 1, data, mac)
	assert.ErrorIs(t, err, ErrNoMatchingReceiverState)
	assert.Equal(t, original, data)
}
