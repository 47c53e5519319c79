// Package callclient is a terminal demo participant for a group call: it
// performs an X3DH-style handshake with the call admin through rootkex,
// seeds a ratchet.Context with the resulting per-sender secrets, and drives
// Encrypt/Decrypt on typed-in lines standing in for media frames.
package callclient

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jroimartin/gocui"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/crypto/fingerprint"
	"github.com/ringrtc-go/framecrypt/crypto/key25519"
	"github.com/ringrtc-go/framecrypt/httpdelegate"
	"github.com/ringrtc-go/framecrypt/ratchet"
	"github.com/ringrtc-go/framecrypt/rootkex"
)

// adminSenderID is the fixed sender id reserved for whichever participant
// hosts a call; every joiner receives a distinct nonzero id from the
// caller of NewParticipant (cmd/participant takes it from its command
// line).
const adminSenderID ratchet.SenderID = 0

// Participant is one client's view of a single call: its own identity and
// sender chain, the admin's published bundle once learned, and the shared
// ratchet.Context encrypting and decrypting every frame in the call.
type Participant struct {
	CallID   string
	SenderID ratchet.SenderID
	Identity key25519.PrivateKey

	httpClient httpdelegate.Client
	redis      *redis.Client
	logger     *logrus.Logger

	wsConn *websocket.Conn

	mu          sync.Mutex
	isAdmin     bool
	ownSeed     ratchet.Secret
	ratchetCtx  *ratchet.Context
	adminBundle *rootkex.AdminPrekeyBundle // set only when isAdmin
	// wrapSecrets maps a peer's sender id to the X3DH-agreed secret used
	// to seal sender-chain announcements exchanged with that peer.
	wrapSecrets map[ratchet.SenderID][]byte
	// knownIdentities pins the identity key a sender id first handshook
	// with, so a later handshake claiming the same sender id under a
	// different identity key is rejected instead of silently re-keyed.
	knownIdentities map[ratchet.SenderID]key25519.PublicKey
	// peerSecrets mirrors every AddReceiveSecret call so a restarted
	// process can rebuild its receiver states from a persisted snapshot.
	peerSecrets map[ratchet.SenderID]peerSecret

	Gui      *gocui.Gui
	messages []string
	wg       sync.WaitGroup
}

// NewParticipant generates a fresh identity key and a fresh sender chain
// seed for senderID in the given call.
func NewParticipant(callID string, senderID ratchet.SenderID, logger *logrus.Logger) (*Participant, error) {
	identity, err := key25519.New()
	if err != nil {
		return nil, fmt.Errorf("callclient: generating identity key: %w", err)
	}

	var seed ratchet.Secret
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("callclient: generating sender chain seed: %w", err)
	}

	if logger == nil {
		logger = logrus.New()
	}

	return &Participant{
		CallID:          callID,
		SenderID:        senderID,
		Identity:        *identity,
		httpClient:      httpdelegate.NewDirectClient(0, logger),
		redis:           redis.NewClient(&redis.Options{Addr: config.RedisAddress}),
		logger:          logger,
		ownSeed:         seed,
		ratchetCtx:      ratchet.New(seed),
		wrapSecrets:     make(map[ratchet.SenderID][]byte),
		peerSecrets:     make(map[ratchet.SenderID]peerSecret),
		knownIdentities: make(map[ratchet.SenderID]key25519.PublicKey),
	}, nil
}

// peerSecret is a persisted copy of one AddReceiveSecret call.
type peerSecret struct {
	RatchetCounter ratchet.RatchetCounter
	Secret         ratchet.Secret
}

// trackReceiveSecret registers secret with the ratchet context and records
// it so persist.go can rebuild this receiver state after a restart. Callers
// must hold p.mu.
func (p *Participant) trackReceiveSecret(peerID ratchet.SenderID, ratchetCounter ratchet.RatchetCounter, secret ratchet.Secret) {
	p.ratchetCtx.AddReceiveSecret(peerID, ratchetCounter, secret)
	p.peerSecrets[peerID] = peerSecret{RatchetCounter: ratchetCounter, Secret: secret}
}

// randomBelow returns a uniform random int in [0, n), falling back to n-1
// if the CSPRNG read fails, which MaybeAdvanceSendRatchet treats as "do
// not advance".
func randomBelow(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return n - 1
	}
	return v.Int64()
}

// announceInfo picks the sealing direction for secrets this participant
// announces about its own sender chain.
func (p *Participant) announceInfo() []byte {
	if p.isAdmin {
		return sealAdminToJoinerInfo
	}
	return sealJoinerToAdminInfo
}

// peerAnnounceInfo picks the sealing direction used for secrets a peer
// announces about its own sender chain, the mirror of announceInfo.
func (p *Participant) peerAnnounceInfo() []byte {
	if p.isAdmin {
		return sealJoinerToAdminInfo
	}
	return sealAdminToJoinerInfo
}

// FingerprintWith renders the wrap secret this participant shares with
// peerID as a short numeric string, so two call participants can read it
// aloud to confirm they agree on the same secret before trusting the call.
func (p *Participant) FingerprintWith(peerID ratchet.SenderID) ([fingerprint.Digits]int, error) {
	p.mu.Lock()
	wrapSecret, ok := p.wrapSecrets[peerID]
	p.mu.Unlock()
	if !ok {
		return [fingerprint.Digits]int{}, fmt.Errorf("callclient: no wrap secret established with sender %d yet", peerID)
	}

	var secret [32]byte
	copy(secret[:], wrapSecret)
	return fingerprint.Of(secret, []byte(p.CallID)), nil
}

// MaybeAdvanceSendRatchet rolls the local sender chain forward with
// probability 1/config.RatchetAdvanceHintChance, announcing the new chain
// to every peer with an established wrap secret so each can pre-warm a
// receiver state. Call this between frames, not mid-frame.
func (p *Participant) MaybeAdvanceSendRatchet() error {
	if randomBelow(int64(config.RatchetAdvanceHintChance)) != 0 {
		return nil
	}

	p.mu.Lock()
	ratchetCounter, secret := p.ratchetCtx.AdvanceSendRatchet()
	peers := make([]ratchet.SenderID, 0, len(p.wrapSecrets))
	for id := range p.wrapSecrets {
		peers = append(peers, id)
	}
	info := p.announceInfo()
	p.mu.Unlock()

	for _, peerID := range peers {
		if err := p.announceSenderSecret(peerID, info, ratchetCounter, secret); err != nil {
			return err
		}
	}
	return nil
}
