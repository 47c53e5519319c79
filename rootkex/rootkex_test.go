package rootkex

import (
	"testing"

	"github.com/ringrtc-go/framecrypt/crypto/key25519"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyAgreementMatches(t *testing.T) {
	tests := []struct {
		name          string
		withOneTime   bool
	}{
		{name: "with admin one-time prekey", withOneTime: true},
		{name: "without admin one-time prekey", withOneTime: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin, err := newAdminBundle(tt.withOneTime)
			require.NoError(t, err)

			published, err := admin.ToPublished()
			require.NoError(t, err)

			joinerIdentity, err := key25519.New()
			require.NoError(t, err)

			rootSecret, ephemeralPub, err := JoinerAgree(published, *joinerIdentity)
			require.NoError(t, err)
			assert.NotEmpty(t, rootSecret)
			assert.NotNil(t, ephemeralPub)

			joinerIdentityPub, err := joinerIdentity.Public()
			require.NoError(t, err)

			adminSecret, err := AdminAgree(admin, JoinerKeyBundle{
				IdentityKey:  *joinerIdentityPub,
				EphemeralKey: *ephemeralPub,
			})
			require.NoError(t, err)

			assert.Equal(t, rootSecret, adminSecret)
		})
	}
}

func TestJoinerAgreeRejectsBadSignature(t *testing.T) {
	admin, err := newAdminBundle(false)
	require.NoError(t, err)

	published, err := admin.ToPublished()
	require.NoError(t, err)
	published.PrekeySig = []byte("not-a-signature")

	joinerIdentity, err := key25519.New()
	require.NoError(t, err)

	_, _, err = JoinerAgree(published, *joinerIdentity)
	assert.Error(t, err)
}

func newAdminBundle(withOneTime bool) (*AdminPrekeyBundle, error) {
	identity, err := key25519.New()
	if err != nil {
		return nil, err
	}
	prekey, err := key25519.New()
	if err != nil {
		return nil, err
	}

	bundle := &AdminPrekeyBundle{
		IdentityKey: *identity,
		Prekey:      *prekey,
	}

	if withOneTime {
		oneTime, err := key25519.New()
		if err != nil {
			return nil, err
		}
		bundle.OneTimePrekey = oneTime
	}

	return bundle, nil
}
