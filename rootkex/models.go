// Package rootkex performs an X3DH-style asymmetric key agreement between a
// joining participant and the call admin that already holds a prekey bundle
// published through the signaling layer. callclient uses the agreed secret
// only to seal the sender-chain seeds the two sides announce to each other;
// it is never used as a ratchet.Context secret itself, and rootkex never
// touches media frames.
package rootkex

import (
	"encoding/json"
	"fmt"

	"github.com/ringrtc-go/framecrypt/crypto/key25519"
	"github.com/ringrtc-go/framecrypt/crypto/signerschnorr"
)

// AdminPrekeyBundle is the call admin's private key material: a long-term
// identity key, a medium-term signed prekey, and an optional one-time
// prekey. AdminAgree mixes the one-time prekey into every agreement it
// completes and never clears it from the bundle.
type AdminPrekeyBundle struct {
	IdentityKey   key25519.PrivateKey
	Prekey        key25519.PrivateKey
	OneTimePrekey *key25519.PrivateKey
}

// PublishedAdminBundle is what the admin publishes through the signaling
// layer for joiners to fetch: public keys plus a signature over the prekey.
type PublishedAdminBundle struct {
	IdentityKey   key25519.PublicKey
	Prekey        key25519.PublicKey
	PrekeySig     []byte
	OneTimePrekey *key25519.PublicKey
}

// JoinerKeyBundle is what a joiner sends the admin alongside its request:
// its identity key and a fresh ephemeral key for this session.
type JoinerKeyBundle struct {
	IdentityKey  key25519.PublicKey
	EphemeralKey key25519.PublicKey
}

// ToPublished signs bundle's prekey with its identity key and returns the
// form suitable for publishing through the signaling layer.
func (bundle *AdminPrekeyBundle) ToPublished() (PublishedAdminBundle, error) {
	identityPub, err := bundle.IdentityKey.Public()
	if err != nil {
		return PublishedAdminBundle{}, fmt.Errorf("rootkex: deriving identity public key: %w", err)
	}
	prekeyPub, err := bundle.Prekey.Public()
	if err != nil {
		return PublishedAdminBundle{}, fmt.Errorf("rootkex: deriving prekey public key: %w", err)
	}
	prekeySig, err := signerschnorr.Sign(bundle.IdentityKey, prekeyPub[:])
	if err != nil {
		return PublishedAdminBundle{}, fmt.Errorf("rootkex: signing prekey: %w", err)
	}

	published := PublishedAdminBundle{
		IdentityKey: *identityPub,
		Prekey:      *prekeyPub,
		PrekeySig:   prekeySig,
	}
	if bundle.OneTimePrekey != nil {
		oneTimePub, err := bundle.OneTimePrekey.Public()
		if err != nil {
			return PublishedAdminBundle{}, fmt.Errorf("rootkex: deriving one-time prekey public key: %w", err)
		}
		published.OneTimePrekey = oneTimePub
	}
	return published, nil
}

// Verify checks the admin's signature over its own published prekey. A
// joiner must call this before trusting bundle for key agreement.
func (bundle PublishedAdminBundle) Verify() error {
	return signerschnorr.Verify(bundle.IdentityKey, bundle.Prekey[:], bundle.PrekeySig)
}

// MarshalBinary lets PublishedAdminBundle travel through the signaling
// layer's redis-backed bundle store as an opaque blob.
func (bundle PublishedAdminBundle) MarshalBinary() ([]byte, error) {
	return json.Marshal(bundle)
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (bundle *PublishedAdminBundle) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, bundle)
}
