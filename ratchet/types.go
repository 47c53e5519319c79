package ratchet

// Secret is a 256-bit root or chain value.
type Secret [32]byte

// RatchetCounter is the ordinal position along a key chain. It wraps
// modulo 256.
type RatchetCounter = uint8

// FrameCounter is the monotonic per-Context frame sequence number. It
// doubles as the AES-CTR nonce and as HMAC input.
type FrameCounter = uint64

// SenderID identifies a remote participant's key chain.
type SenderID = uint32

// Mac is a truncated HMAC-SHA-256 tag authenticating one frame.
type Mac = [MACSizeBytes]byte
