package rootkex

import (
	"github.com/ringrtc-go/framecrypt/crypto/dh25519"
	"github.com/ringrtc-go/framecrypt/crypto/hkdf"
	"github.com/ringrtc-go/framecrypt/crypto/key25519"
)

// JoinerAgree runs the joiner's half of the key agreement against the
// admin's published bundle, using joinerIdentity as the joiner's long-term
// identity key. It returns the 32-byte root secret and the joiner's fresh
// ephemeral public key, which must be sent to the admin so it can complete
// its own side with AdminAgree.
func JoinerAgree(admin PublishedAdminBundle, joinerIdentity key25519.PrivateKey) (rootSecret []byte, ephemeralPub *key25519.PublicKey, err error) {
	if err := admin.Verify(); err != nil {
		return nil, nil, err
	}

	ephemeral, err := key25519.New()
	if err != nil {
		return nil, nil, err
	}
	ephemeralPub, err = ephemeral.Public()
	if err != nil {
		return nil, nil, err
	}

	dh1, err := dh25519.SharedSecret(&joinerIdentity, &admin.Prekey)
	if err != nil {
		return nil, nil, err
	}
	dh2, err := dh25519.SharedSecret(ephemeral, &admin.IdentityKey)
	if err != nil {
		return nil, nil, err
	}
	dh3, err := dh25519.SharedSecret(ephemeral, &admin.Prekey)
	if err != nil {
		return nil, nil, err
	}

	var dh4 []byte
	if admin.OneTimePrekey != nil {
		if dh4, err = dh25519.SharedSecret(ephemeral, admin.OneTimePrekey); err != nil {
			dh4 = nil
		}
	}

	sk := concatSecrets(dh1, dh2, dh3, dh4)
	rootSecret, err = hkdf.New32BytesKeyFromSecret(sk)
	if err != nil {
		return nil, nil, err
	}
	return rootSecret, ephemeralPub, nil
}

func concatSecrets(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
