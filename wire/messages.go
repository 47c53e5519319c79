// Package wire defines the JSON messages exchanged between a participant
// and the signaling server. None of these carry plaintext media: frame
// payloads here are always the ciphertext + MAC produced by ratchet.Context.
package wire

import "github.com/ringrtc-go/framecrypt/ratchet"

// MessageType discriminates the envelopes sent over the call's websocket
// fan-out.
type MessageType string

const (
	// TypeHandshake carries a joiner's ephemeral X3DH key plus its sender
	// secret, sealed under the pairwise key agreed with the call admin.
	TypeHandshake MessageType = "handshake"
	// TypeSecretAnnounce carries the sender's current chain secret and
	// ratchet counter, sealed the same way as TypeHandshake. The admin
	// sends one in reply to each handshake, and a participant sends one
	// each time it advances its sender chain
	// (Participant.MaybeAdvanceSendRatchet).
	TypeSecretAnnounce MessageType = "secret-announce"
	// TypeRatchetAdvanceHint tells receivers the sender is about to roll
	// its send ratchet forward, letting them pre-warm a receiver state
	// before frames using it arrive.
	TypeRatchetAdvanceHint MessageType = "ratchet-advance-hint"
	// TypeFrame carries one encrypted media frame.
	TypeFrame MessageType = "frame"
)

// Envelope is the outer message shape every websocket frame uses; From is
// filled in by the signaling server from the connection's registered
// sender id, never trusted from the client payload.
type Envelope struct {
	Type MessageType      `json:"type"`
	From ratchet.SenderID `json:"from"`
	Body []byte           `json:"body"`
}

// HandshakeBundle is the Body of a TypeHandshake envelope.
type HandshakeBundle struct {
	IdentityKey  [32]byte `json:"identity_key"`
	EphemeralKey [32]byte `json:"ephemeral_key"`
	SealedSecret []byte   `json:"sealed_secret"`
}

// SecretAnnounceBundle is the Body of a TypeSecretAnnounce envelope.
type SecretAnnounceBundle struct {
	SealedSecret []byte `json:"sealed_secret"`
}

// RatchetAdvanceHint is the Body of a TypeRatchetAdvanceHint envelope.
type RatchetAdvanceHint struct {
	NextRatchetCounter ratchet.RatchetCounter `json:"next_ratchet_counter"`
}

// FrameEnvelope is the Body of a TypeFrame envelope: an authenticated,
// encrypted media frame plus the header fields ratchet.Context.Decrypt
// needs to locate the right receiver state.
type FrameEnvelope struct {
	RatchetCounter ratchet.RatchetCounter `json:"ratchet_counter"`
	FrameCounter   ratchet.FrameCounter   `json:"frame_counter"`
	Ciphertext     []byte                 `json:"ciphertext"`
	Mac            ratchet.Mac            `json:"mac"`
}

// JoinRequest is the control-plane request body a participant posts to
// config.JoinPath to enter a call.
type JoinRequest struct {
	CallID      string           `json:"call_id"`
	SenderID    ratchet.SenderID `json:"sender_id"`
	IdentityKey [32]byte         `json:"identity_key"`
}

// JoinResponse answers a JoinRequest with the call admin's published X3DH
// bundle, so the joiner can derive a root secret with rootkex.JoinerAgree.
type JoinResponse struct {
	AdminIdentityKey [32]byte `json:"admin_identity_key"`
	AdminPrekey      [32]byte `json:"admin_prekey"`
	AdminPrekeySig   []byte   `json:"admin_prekey_sig"`
}

// PublishBundleRequest is what the call admin posts to config.BundlePath to
// publish its X3DH prekey bundle for a call.
type PublishBundleRequest struct {
	CallID           string   `json:"call_id"`
	AdminIdentityKey [32]byte `json:"admin_identity_key"`
	AdminPrekey      [32]byte `json:"admin_prekey"`
	AdminPrekeySig   []byte   `json:"admin_prekey_sig"`
}
