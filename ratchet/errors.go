package ratchet

import "errors"

// ErrNoMatchingReceiverState is returned by Context.Decrypt when neither the
// fast path nor the catch-up path could authenticate a frame. The ciphertext
// buffer is left untouched.
var ErrNoMatchingReceiverState = errors.New("no receiver state could be found matching the provided data")
