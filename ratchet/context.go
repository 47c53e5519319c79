// Package ratchet implements the per-sender ratcheting authenticated
// encryption engine that protects individual media frames exchanged among
// participants of a group call.
//
// One Context encrypts outgoing frames with its own rolling key while
// simultaneously decrypting frames from any number of remote senders, each
// independently advancing their own ratchet. A Context is single-threaded by
// contract: callers needing concurrent encrypt/decrypt must serialize
// externally.
package ratchet

import (
	stdhmac "crypto/hmac"
	"encoding/binary"

	"github.com/ringrtc-go/framecrypt/crypto"
	"github.com/ringrtc-go/framecrypt/crypto/aes256"
	"github.com/ringrtc-go/framecrypt/crypto/hmac"
)

// Context is the top-level object: one local SenderState for outbound
// frames, and a bounded newest-first sequence of ReceiverStates per remote
// sender for inbound frames.
type Context struct {
	sender           senderState
	nextFrameCounter FrameCounter
	remoteStates     map[SenderID][]receiverState
}

// New constructs a Context from a 32-byte initial send secret. The local
// sender chain starts at ratchet counter 0; the frame counter starts at 1.
func New(initialSendSecret Secret) *Context {
	return &Context{
		sender:           newSenderState(0, initialSendSecret),
		nextFrameCounter: 1,
		remoteStates:     make(map[SenderID][]receiverState),
	}
}

func frameCounterToIV(frameCounter FrameCounter) (iv [16]byte) {
	binary.BigEndian.PutUint64(iv[:8], frameCounter)
	return iv
}

func lenAsU32BE(data []byte) (out [4]byte) {
	binary.BigEndian.PutUint32(out[:], uint32(len(data)))
	return out
}

// computeMAC authenticates the ciphertext the way both Encrypt and Decrypt
// do: HMAC-SHA-256 over IV || u32be(len) || ciphertext || u32be(0),
// truncated to MACSizeBytes. The trailing all-zero tail is required wire
// padding for an extensible associated-data layout.
func computeMAC(hmacKey [32]byte, iv [16]byte, data []byte) Mac {
	lenBytes := lenAsU32BE(data)
	ad := make([]byte, 0, len(iv)+len(lenBytes)+len(data)+4)
	ad = append(ad, iv[:]...)
	ad = append(ad, lenBytes[:]...)
	ad = append(ad, data...)
	ad = append(ad, 0, 0, 0, 0)

	full := hmac.Hash(crypto.DefaultHashFunc, hmacKey[:], ad)
	if len(full) != crypto.HMACSHA256Size {
		panic("ratchet: HMAC-SHA-256 produced an unexpected tag length")
	}
	var out Mac
	copy(out[:], full[:MACSizeBytes])
	return out
}

// checkMAC reports, in constant time, whether mac authenticates data under
// state's current HMAC key for the given frame counter.
func checkMAC(state receiverState, frameCounter FrameCounter, data []byte, mac Mac) bool {
	iv := frameCounterToIV(frameCounter)
	expected := computeMAC(state.senderState.currentHMACKey, iv, data)
	return stdhmac.Equal(expected[:], mac[:])
}

// Encrypt AES-256-CTR-encrypts data in place and fills mac with the
// authenticating tag. It returns the ratchet and frame counters to carry on
// the wire alongside the ciphertext. Encrypt never fails under the abstract
// contract; the error return exists for API symmetry with Decrypt.
func (c *Context) Encrypt(data []byte, mac *Mac) (RatchetCounter, FrameCounter, error) {
	frameCounter := c.nextFrameCounter
	c.nextFrameCounter++

	iv := frameCounterToIV(frameCounter)
	mustCryptCTR(c.sender.currentAESKey, iv, data)
	*mac = computeMAC(c.sender.currentHMACKey, iv, data)
	return c.sender.ratchetCounter, frameCounter, nil
}

// Decrypt authenticates and AES-256-CTR-decrypts data in place using the
// receiver state for senderID that matches mac, trying the fast path
// (matching ratchet counter) before the more expensive catch-up path
// (speculative ratchet advancement). If neither matches, data is left
// untouched and ErrNoMatchingReceiverState is returned.
func (c *Context) Decrypt(senderID SenderID, ratchetCounter RatchetCounter, frameCounter FrameCounter, data []byte, mac Mac) error {
	states := c.remoteStates[senderID]

	// Phase A: fast path, newest first.
	for _, state := range states {
		if state.senderState.ratchetCounter == ratchetCounter && checkMAC(state, frameCounter, data, mac) {
			mustCryptCTR(state.senderState.currentAESKey, frameCounterToIV(frameCounter), data)
			return nil
		}
	}

	// Phase B: catch-up. Strictly more expensive (HKDF steps proportional
	// to the counter gap), attempted only after every cheap check failed.
	for i, state := range states {
		candidate := state.tryAdvanceRatchet(ratchetCounter, frameCounter)
		if checkMAC(candidate, frameCounter, data, mac) {
			candidate.limitOOO()
			states[i] = candidate
			mustCryptCTR(candidate.senderState.currentAESKey, frameCounterToIV(frameCounter), data)
			return nil
		}
	}

	return ErrNoMatchingReceiverState
}

func mustCryptCTR(key [32]byte, iv [16]byte, data []byte) {
	if err := aes256.CryptCTR(key, iv, data); err != nil {
		panic("ratchet: AES-256-CTR failed on a fixed-size key/iv: " + err.Error())
	}
}

// SendState returns the local sender chain's current ratchet counter and
// secret, for distribution to a newly joined peer.
func (c *Context) SendState() (RatchetCounter, Secret) {
	return c.sender.ratchetCounter, c.sender.currentSecret
}

// AdvanceSendRatchet ratchets the local send state forward one step and
// returns the new (ratchet counter, secret). Callers should rotate to a
// fresh secret via ResetSendRatchet before calling this when a peer leaves
// a call; the core does not enforce that policy, it only advances.
func (c *Context) AdvanceSendRatchet() (RatchetCounter, Secret) {
	c.sender.advance()
	return c.SendState()
}

// ResetSendRatchet replaces the local sender chain with a fresh one at
// ratchet counter 0 on newSecret. The frame counter is never reset: it
// remains a monotonic process-global sequence, so IVs stay unique across
// secret rotations.
func (c *Context) ResetSendRatchet(newSecret Secret) {
	c.sender = newSenderState(0, newSecret)
}

// AddReceiveSecret registers a new inbound chain generation for senderID at
// the front of its sequence, evicting the oldest once
// MaxReceiverStatesToRetain is reached.
func (c *Context) AddReceiveSecret(senderID SenderID, ratchetCounter RatchetCounter, secret Secret) {
	states := c.remoteStates[senderID]
	if len(states) >= MaxReceiverStatesToRetain {
		states = states[:len(states)-1]
	}
	states = append([]receiverState{newReceiverState(ratchetCounter, secret)}, states...)
	c.remoteStates[senderID] = states
}
