package ratchet

// MACSizeBytes is the length of a frame MAC: the leftmost truncation of
// HMAC-SHA-256.
const MACSizeBytes = 16

// MaxReceiverStatesToRetain bounds how many ratchet generations are kept
// per remote sender, newest first.
const MaxReceiverStatesToRetain = 5

// MaxOOOFrames is the frame-counter gap, sized for 30fps * 10s, past which
// a ratchet jump is treated as "significant" and the previous high-water
// chain position is retained as the new old state.
const MaxOOOFrames = 30 * 10

// MaxOOORatchets bounds how many ratchet generations behind the current
// one a receiver will keep an old secret for.
const MaxOOORatchets = 5

// ratchetInfo, aesInfo and hmacInfo are the fixed HKDF info strings. The
// exact bytes are part of the wire contract: any conforming peer derives
// the same keys from the same secret.
var (
	ratchetInfo = []byte("RingRTC Ratchet")
	aesInfo     = []byte("RingRTC AES Key")
	hmacInfo    = []byte("RingRTC HMAC Key")
)
