package callclient

import (
	"crypto/rand"
	"fmt"

	"github.com/ringrtc-go/framecrypt/crypto"
	"github.com/ringrtc-go/framecrypt/crypto/aes256"
	"github.com/ringrtc-go/framecrypt/crypto/hkdf"
	"github.com/ringrtc-go/framecrypt/ratchet"
)

var (
	sealJoinerToAdminInfo = []byte("CallClient Joiner Announce")
	sealAdminToJoinerInfo = []byte("CallClient Admin Announce")
)

// sealNonceSize is the length of the random salt folded into every
// directionalKey derivation. Without it, repeat announcements to the same
// peer (Participant.MaybeAdvanceSendRatchet fires on roughly 1 in
// config.RatchetAdvanceHintChance frames) would reuse the same AES-CTR
// keystream under IV 0, letting an eavesdropper XOR two ciphertexts
// together to cancel it out.
const sealNonceSize = 16

// directionalKey derives a single-use sealing key from the X3DH-agreed
// wrap secret, the direction's info string, and a per-call nonce, so no
// two sealed announcements ever share a keystream.
func directionalKey(wrapSecret []byte, info []byte, nonce []byte) [32]byte {
	var out [32]byte
	n, err := hkdf.KDF(crypto.DefaultHashFunc, wrapSecret, nonce, info, out[:])
	if err != nil || n != len(out) {
		panic("callclient: deriving a sealing key from a fixed-size secret failed")
	}
	return out
}

// sealSenderSecret wraps a sender-chain seed for transport over the
// websocket fan-out, authenticated only by the fact that only the intended
// recipient can derive the matching wrapSecret via rootkex. Each call
// draws a fresh random nonce and folds it into the key derivation, so
// repeated announcements of the same direction never reuse a keystream.
func sealSenderSecret(wrapSecret []byte, info []byte, ratchetCounter ratchet.RatchetCounter, secret ratchet.Secret) []byte {
	var nonce [sealNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		panic("callclient: generating a sealing nonce failed: " + err.Error())
	}

	key := directionalKey(wrapSecret, info, nonce[:])
	plaintext := make([]byte, 1+len(secret))
	plaintext[0] = ratchetCounter
	copy(plaintext[1:], secret[:])

	var iv [16]byte
	if err := aes256.CryptCTR(key, iv, plaintext); err != nil {
		panic("callclient: sealing a fixed-size secret failed: " + err.Error())
	}
	return append(nonce[:], plaintext...)
}

// openSenderSecret is the inverse of sealSenderSecret.
func openSenderSecret(wrapSecret []byte, info []byte, sealed []byte) (ratchet.RatchetCounter, ratchet.Secret, error) {
	var secret ratchet.Secret
	if len(sealed) != sealNonceSize+1+len(secret) {
		return 0, secret, fmt.Errorf("callclient: sealed secret has wrong length %d", len(sealed))
	}

	nonce := sealed[:sealNonceSize]
	key := directionalKey(wrapSecret, info, nonce)
	plaintext := append([]byte(nil), sealed[sealNonceSize:]...)
	var iv [16]byte
	if err := aes256.CryptCTR(key, iv, plaintext); err != nil {
		panic("callclient: opening a fixed-size secret failed: " + err.Error())
	}

	ratchetCounter := plaintext[0]
	copy(secret[:], plaintext[1:])
	return ratchetCounter, secret, nil
}
