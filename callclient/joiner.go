package callclient

import (
	"encoding/json"
	"fmt"

	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/crypto/key25519"
	"github.com/ringrtc-go/framecrypt/httpdelegate"
	"github.com/ringrtc-go/framecrypt/rootkex"
	"github.com/ringrtc-go/framecrypt/wire"
)

// Join fetches the call admin's published bundle, completes the X3DH
// agreement, and sends a TypeHandshake envelope announcing this
// participant's own sender chain. It must be called after ConnectWebSocket.
func (p *Participant) Join() error {
	identityPub := mustPublic(p.Identity)

	reqBody, err := json.Marshal(wire.JoinRequest{
		CallID:      p.CallID,
		SenderID:    p.SenderID,
		IdentityKey: [32]byte(identityPub),
	})
	if err != nil {
		return fmt.Errorf("callclient: marshaling join request: %w", err)
	}

	respBody, err := p.postControlPlaneForResponse(config.JoinPath, reqBody)
	if err != nil {
		return err
	}

	var resp wire.JoinResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("callclient: decoding join response: %w", err)
	}

	published := rootkex.PublishedAdminBundle{
		IdentityKey: key25519.PublicKey(resp.AdminIdentityKey),
		Prekey:      key25519.PublicKey(resp.AdminPrekey),
		PrekeySig:   resp.AdminPrekeySig,
	}

	wrapSecret, ephemeralPub, err := rootkex.JoinerAgree(published, p.Identity)
	if err != nil {
		return fmt.Errorf("callclient: X3DH agreement with call admin failed: %w", err)
	}

	p.mu.Lock()
	p.wrapSecrets[adminSenderID] = wrapSecret
	ratchetCounter, secret := p.ratchetCtx.SendState()
	p.mu.Unlock()

	handshake := wire.HandshakeBundle{
		IdentityKey:  [32]byte(identityPub),
		EphemeralKey: [32]byte(*ephemeralPub),
		SealedSecret: sealSenderSecret(wrapSecret, sealJoinerToAdminInfo, ratchetCounter, secret),
	}
	body, err := json.Marshal(handshake)
	if err != nil {
		return fmt.Errorf("callclient: marshaling handshake bundle: %w", err)
	}

	return p.sendEnvelope(wire.Envelope{Type: wire.TypeHandshake, From: p.SenderID, Body: body})
}

func mustPublic(priv key25519.PrivateKey) key25519.PublicKey {
	pub, err := priv.Public()
	if err != nil {
		panic("callclient: deriving a public key from a freshly generated private key failed: " + err.Error())
	}
	return *pub
}

// postControlPlane posts body to path on the signaling server and discards
// a successful response body.
func (p *Participant) postControlPlane(path string, body []byte) error {
	_, err := p.postControlPlaneForResponse(path, body)
	return err
}

// postControlPlaneForResponse posts body to path synchronously, since
// httpdelegate.Client's callback-based API is driven to completion here
// with a single-use channel.
func (p *Participant) postControlPlaneForResponse(path string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("http://%s%s", config.ServerAddress, path)

	req := httpdelegate.Request{
		Method:  httpdelegate.MethodPost,
		URL:     url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}

	var result []byte
	var callErr error
	done := make(chan struct{})
	p.httpClient.SendRequest(req, func(resp *httpdelegate.Response) {
		defer close(done)
		if resp == nil {
			callErr = fmt.Errorf("callclient: request to %s failed", path)
			return
		}
		if resp.Status.IsError() {
			callErr = fmt.Errorf("callclient: %s returned status %d", path, resp.Status.Code)
			return
		}
		result = resp.Body
	})
	<-done
	return result, callErr
}
