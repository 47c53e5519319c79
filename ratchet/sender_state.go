package ratchet

// senderState is a single position in a key chain: a chain secret and the
// AES/HMAC keys derived from it.
type senderState struct {
	currentSecret  Secret
	currentAESKey  [32]byte
	currentHMACKey [32]byte
	ratchetCounter RatchetCounter
}

// newSenderState derives both keys for secret at counter.
func newSenderState(counter RatchetCounter, secret Secret) senderState {
	return senderState{
		currentSecret:  secret,
		currentAESKey:  deriveAESKey(secret),
		currentHMACKey: deriveHMACKey(secret),
		ratchetCounter: counter,
	}
}

// advance ratchets the chain secret forward one step, re-derives both keys,
// and increments the ratchet counter (wrapping mod 256).
func (s *senderState) advance() {
	ratchetSecret(&s.currentSecret)
	s.currentAESKey = deriveAESKey(s.currentSecret)
	s.currentHMACKey = deriveHMACKey(s.currentSecret)
	s.ratchetCounter++
}
