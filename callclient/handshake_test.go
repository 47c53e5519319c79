package callclient

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringrtc-go/framecrypt/ratchet"
)

func TestSealOpenSenderSecretRoundTrip(t *testing.T) {
	wrapSecret := make([]byte, 32)
	_, err := rand.Read(wrapSecret)
	require.NoError(t, err)

	var secret ratchet.Secret
	_, err = rand.Read(secret[:])
	require.NoError(t, err)

	sealed := sealSenderSecret(wrapSecret, sealJoinerToAdminInfo, 7, secret)

	gotCounter, gotSecret, err := openSenderSecret(wrapSecret, sealJoinerToAdminInfo, sealed)
	require.NoError(t, err)
	assert.EqualValues(t, 7, gotCounter)
	assert.Equal(t, secret, gotSecret)
}

func TestOpenSenderSecretWrongDirectionFails(t *testing.T) {
	wrapSecret := make([]byte, 32)
	_, err := rand.Read(wrapSecret)
	require.NoError(t, err)

	var secret ratchet.Secret
	_, err = rand.Read(secret[:])
	require.NoError(t, err)

	sealed := sealSenderSecret(wrapSecret, sealJoinerToAdminInfo, 3, secret)

	gotCounter, gotSecret, err := openSenderSecret(wrapSecret, sealAdminToJoinerInfo, sealed)
	require.NoError(t, err)
	assert.NotEqual(t, ratchet.RatchetCounter(3), gotCounter)
	assert.NotEqual(t, secret, gotSecret)
}

func TestOpenSenderSecretRejectsBadLength(t *testing.T) {
	_, _, err := openSenderSecret(make([]byte, 32), sealJoinerToAdminInfo, []byte("too short"))
	assert.Error(t, err)
}

// TestSealSenderSecretNeverReusesKeystream guards against the nonce-reuse
// regression where repeat announcements under the same wrap secret and
// direction encrypted under an identical key and IV.
func TestSealSenderSecretNeverReusesKeystream(t *testing.T) {
	wrapSecret := make([]byte, 32)
	_, err := rand.Read(wrapSecret)
	require.NoError(t, err)

	var secret ratchet.Secret
	_, err = rand.Read(secret[:])
	require.NoError(t, err)

	first := sealSenderSecret(wrapSecret, sealJoinerToAdminInfo, 1, secret)
	second := sealSenderSecret(wrapSecret, sealJoinerToAdminInfo, 1, secret)

	assert.NotEqual(t, first, second, "two seals of the same secret must not produce identical ciphertext")

	gotCounter, gotSecret, err := openSenderSecret(wrapSecret, sealJoinerToAdminInfo, second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, gotCounter)
	assert.Equal(t, secret, gotSecret)
}
