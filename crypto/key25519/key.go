// Package key25519 wraps Curve25519 scalar/point key pairs for the
// signaling-side key agreement used to distribute ratchet root secrets.
package key25519

import (
	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/suites"
)

type (
	// PrivateKey is a 32-byte Curve25519 scalar.
	PrivateKey [32]byte
	// PublicKey is a 32-byte Curve25519 point.
	PublicKey [32]byte
	// Pair is a private/public key pair.
	Pair struct {
		Priv PrivateKey
		Pub  PublicKey
	}
)

// Suite is the edwards25519 curve used throughout the signaling layer.
var Suite = suites.MustFind("Ed25519")

// New generates a fresh random private key.
func New() (*PrivateKey, error) {
	priv := Suite.Scalar().Pick(Suite.RandomStream())
	raw, err := priv.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var privB PrivateKey
	copy(privB[:], raw)
	return &privB, nil
}

// Public derives the public key for a private key.
func (priv *PrivateKey) Public() (*PublicKey, error) {
	scalar, err := priv.ToScalar()
	if err != nil {
		return nil, err
	}
	point := Suite.Point().Mul(scalar, nil)
	raw, err := point.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var pub PublicKey
	copy(pub[:], raw)
	return &pub, nil
}

// ToScalar decodes the private key into a kyber scalar.
func (priv *PrivateKey) ToScalar() (kyber.Scalar, error) {
	scalar := Suite.Scalar()
	if err := scalar.UnmarshalBinary(priv[:]); err != nil {
		return nil, err
	}
	return scalar, nil
}

// ToPoint decodes the public key into a kyber point.
func (pub *PublicKey) ToPoint() (kyber.Point, error) {
	point := Suite.Point()
	if err := point.UnmarshalBinary(pub[:]); err != nil {
		return nil, err
	}
	return point, nil
}

// Equal reports whether two public keys are the same point, in constant time.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return false
	}
	var diff byte
	for i := range pub {
		diff |= pub[i] ^ other[i]
	}
	return diff == 0
}
