// Package signerschnorr signs and verifies call-admin prekeys with a
// Schnorr signature over the edwards25519 curve.
package signerschnorr

import (
	"go.dedis.ch/kyber/v4/sign/schnorr"

	"github.com/ringrtc-go/framecrypt/crypto/key25519"
)

// Sign produces a Schnorr signature over msg using priv.
func Sign(priv key25519.PrivateKey, msg []byte) ([]byte, error) {
	scalar, err := priv.ToScalar()
	if err != nil {
		return nil, err
	}
	return schnorr.Sign(key25519.Suite, scalar, msg)
}

// Verify checks a Schnorr signature over msg against pub.
func Verify(pub key25519.PublicKey, msg, sig []byte) error {
	point, err := pub.ToPoint()
	if err != nil {
		return err
	}
	return schnorr.Verify(key25519.Suite, point, msg, sig)
}
