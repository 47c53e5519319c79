package ratchet

import (
	"github.com/ringrtc-go/framecrypt/crypto"
	"github.com/ringrtc-go/framecrypt/crypto/hkdf"
)

// expand runs HKDF-SHA-256 with an empty salt over secret, filling out with
// the given info string. At the fixed 32-byte output sizes used throughout
// this package, HKDF expansion cannot fail on a conforming implementation;
// a failure here is a fatal programming bug, not a runtime condition the
// caller can recover from.
func expand(secret []byte, info []byte, out []byte) {
	n, err := hkdf.KDF(crypto.DefaultHashFunc, secret, nil, info, out)
	if err != nil {
		panic("ratchet: HKDF expand failed for fixed-size output: " + err.Error())
	}
	if n != len(out) {
		panic("ratchet: HKDF expand returned a short read")
	}
}

// ratchetSecret advances a chain secret one step forward in place.
func ratchetSecret(secret *Secret) {
	var next Secret
	expand(secret[:], ratchetInfo, next[:])
	*secret = next
}

func deriveAESKey(secret Secret) (key [32]byte) {
	expand(secret[:], aesInfo, key[:])
	return key
}

func deriveHMACKey(secret Secret) (key [32]byte) {
	expand(secret[:], hmacInfo, key[:])
	return key
}
