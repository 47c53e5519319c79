package callclient

import (
	"encoding/json"
	"fmt"

	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/crypto/key25519"
	"github.com/ringrtc-go/framecrypt/ratchet"
	"github.com/ringrtc-go/framecrypt/rootkex"
	"github.com/ringrtc-go/framecrypt/wire"
)

// BecomeAdmin marks p as the call admin and publishes bundle to the
// signaling server at config.BundlePath, so joiners can fetch it through
// HandleJoin.
func (p *Participant) BecomeAdmin(bundle *rootkex.AdminPrekeyBundle) error {
	p.mu.Lock()
	p.isAdmin = true
	p.adminBundle = bundle
	p.mu.Unlock()

	published, err := bundle.ToPublished()
	if err != nil {
		return fmt.Errorf("callclient: deriving published bundle: %w", err)
	}

	req := wire.PublishBundleRequest{
		CallID:           p.CallID,
		AdminIdentityKey: [32]byte(published.IdentityKey),
		AdminPrekey:      [32]byte(published.Prekey),
		AdminPrekeySig:   published.PrekeySig,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("callclient: marshaling publish-bundle request: %w", err)
	}

	return p.postControlPlane(config.BundlePath, body)
}

// handleHandshake is the admin's side of accepting a joiner's TypeHandshake
// envelope: it completes the X3DH agreement, registers the joiner's
// announced sender chain, and reciprocates with its own.
func (p *Participant) handleHandshake(joinerSenderID ratchet.SenderID, bundle wire.HandshakeBundle) {
	p.mu.Lock()
	adminBundle := p.adminBundle
	p.mu.Unlock()
	if adminBundle == nil {
		p.logger.Errorf("callclient: received a handshake but this participant is not the admin")
		return
	}

	identityKey := key25519.PublicKey(bundle.IdentityKey)

	p.mu.Lock()
	if known, seen := p.knownIdentities[joinerSenderID]; seen && !known.Equal(&identityKey) {
		p.mu.Unlock()
		p.logger.Errorf("callclient: sender %d handshook with a different identity key than before, rejecting", joinerSenderID)
		return
	}
	p.mu.Unlock()

	wrapSecret, err := rootkex.AdminAgree(adminBundle, rootkex.JoinerKeyBundle{
		IdentityKey:  identityKey,
		EphemeralKey: key25519.PublicKey(bundle.EphemeralKey),
	})
	if err != nil {
		p.logger.Errorf("callclient: completing admin agreement with sender %d: %v", joinerSenderID, err)
		return
	}

	ratchetCounter, secret, err := openSenderSecret(wrapSecret, sealJoinerToAdminInfo, bundle.SealedSecret)
	if err != nil {
		p.logger.Errorf("callclient: opening sender %d's sealed secret: %v", joinerSenderID, err)
		return
	}

	p.mu.Lock()
	p.knownIdentities[joinerSenderID] = identityKey
	p.wrapSecrets[joinerSenderID] = wrapSecret
	p.trackReceiveSecret(joinerSenderID, ratchetCounter, secret)
	myCounter, mySecret := p.ratchetCtx.SendState()
	p.mu.Unlock()

	if err := p.announceSenderSecret(joinerSenderID, sealAdminToJoinerInfo, myCounter, mySecret); err != nil {
		p.logger.Errorf("callclient: announcing sender chain to sender %d: %v", joinerSenderID, err)
	}
}
