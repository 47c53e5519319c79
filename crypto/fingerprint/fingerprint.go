// Package fingerprint renders a 32-byte shared secret as a short numeric
// string two call participants can read aloud to confirm they hold the same
// secret.
//
// This is a secret-equality check, not an identity proof: it never touches
// a signing or identity key, only the secret it is given (callclient passes
// the wrap secret it agreed with a peer).
package fingerprint

import (
	"crypto/sha512"
	"encoding/binary"
)

// Digits is the number of decimal digits in a rendered fingerprint.
const Digits = 30

// Of stretches secret through repeated SHA-512 and renders the result as
// Digits decimal digits, grouped in the Signal-style numeric fingerprint
// layout.
func Of(secret [32]byte, context []byte) [Digits]int {
	digest := append(append([]byte{}, secret[:]...), context...)
	hash := sha512.New()
	for i := 0; i < 5200; i++ {
		hash.Write(digest)
		digest = hash.Sum(nil)
		hash.Reset()
	}

	var result [Digits]byte
	copy(result[:], digest[:Digits])

	var out [Digits]int
	for i := 0; i < Digits/5; i++ {
		chunk := result[i*5 : (i+1)*5]
		num := binary.BigEndian.Uint64(append([]byte{0, 0, 0}, chunk...)) % 100000
		for j := 4; j >= 0; j-- {
			out[i*5+j] = int(num % 10)
			num /= 10
		}
	}
	return out
}
