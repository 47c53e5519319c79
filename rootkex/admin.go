package rootkex

import (
	"github.com/ringrtc-go/framecrypt/crypto/dh25519"
	"github.com/ringrtc-go/framecrypt/crypto/hkdf"
)

// AdminAgree completes the admin's half of the key agreement once a joiner
// has sent its JoinerKeyBundle, using admin's one-time prekey if present
// (the prekey stays in admin). The returned secret matches the one
// JoinerAgree produced; callclient uses it as the wrap secret that seals
// the sender-chain announcements exchanged with that joiner.
func AdminAgree(admin *AdminPrekeyBundle, joiner JoinerKeyBundle) (rootSecret []byte, err error) {
	dh1, err := dh25519.SharedSecret(&admin.Prekey, &joiner.IdentityKey)
	if err != nil {
		return nil, err
	}
	dh2, err := dh25519.SharedSecret(&admin.IdentityKey, &joiner.EphemeralKey)
	if err != nil {
		return nil, err
	}
	dh3, err := dh25519.SharedSecret(&admin.Prekey, &joiner.EphemeralKey)
	if err != nil {
		return nil, err
	}

	var dh4 []byte
	if admin.OneTimePrekey != nil {
		dh4, err = dh25519.SharedSecret(admin.OneTimePrekey, &joiner.EphemeralKey)
		if err != nil {
			dh4 = nil
		}
	}

	sk := concatSecrets(dh1, dh2, dh3, dh4)
	return hkdf.New32BytesKeyFromSecret(sk)
}
