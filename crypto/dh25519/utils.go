// Package dh25519 computes Curve25519 Diffie-Hellman shared secrets.
package dh25519

import (
	"errors"

	"github.com/ringrtc-go/framecrypt/crypto/key25519"
)

// ErrInvalid is returned when either key operand is nil.
var ErrInvalid = errors.New("invalid input")

// SharedSecret returns the X25519 shared point between a private and a
// public key, encoded as its canonical 32-byte representation.
func SharedSecret(priv *key25519.PrivateKey, pub *key25519.PublicKey) ([]byte, error) {
	if priv == nil || pub == nil {
		return nil, ErrInvalid
	}
	scalar, err := priv.ToScalar()
	if err != nil {
		return nil, err
	}
	point, err := pub.ToPoint()
	if err != nil {
		return nil, err
	}
	shared := key25519.Suite.Point().Mul(scalar, point)
	return shared.MarshalBinary()
}
