// genkeys prints a fresh Curve25519 identity/prekey pair in hex.
// cmd/participant does not read these values: run with --admin, it
// generates its own bundle.
package main

import (
	"fmt"
	"log"

	"github.com/ringrtc-go/framecrypt/crypto/key25519"
)

func main() {
	identity, err := key25519.New()
	if err != nil {
		log.Fatalf("Failed to generate identity key: %v", err)
	}
	prekey, err := key25519.New()
	if err != nil {
		log.Fatalf("Failed to generate prekey: %v", err)
	}

	identityPub, err := identity.Public()
	if err != nil {
		log.Fatalf("Failed to derive identity public key: %v", err)
	}
	prekeyPub, err := prekey.Public()
	if err != nil {
		log.Fatalf("Failed to derive prekey public key: %v", err)
	}

	fmt.Printf("ADMIN_IDENTITY_KEY=%x\n", *identity)
	fmt.Printf("ADMIN_IDENTITY_PUBLIC=%x\n", *identityPub)
	fmt.Printf("ADMIN_PREKEY=%x\n", *prekey)
	fmt.Printf("ADMIN_PREKEY_PUBLIC=%x\n", *prekeyPub)
}
