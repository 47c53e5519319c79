package aes256

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
)

// NewKey returns a fresh random 32-byte AES-256 key.
func NewKey() ([]byte, error) {
	key := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, key)
	if err != nil {
		return nil, err
	}
	return key, nil
}

// CryptCTR XORs data in place with the AES-256-CTR keystream for key/iv.
//
// CTR is its own inverse: the same call encrypts or decrypts. There is no
// padding and the output length always equals len(data).
func CryptCTR(key [32]byte, iv [16]byte, data []byte) error {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return err
	}
	stream := cipher.NewCTR(block, iv[:])
	stream.XORKeyStream(data, data)
	return nil
}
