package callclient

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/jroimartin/gocui"

	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/ratchet"
	"github.com/ringrtc-go/framecrypt/wire"
)

// ConnectWebSocket dials the signaling server's fan-out endpoint and starts
// a background goroutine dispatching incoming envelopes.
func (p *Participant) ConnectWebSocket() error {
	url := fmt.Sprintf("ws://%s%s?callId=%s&senderId=%d", config.ServerAddress, config.WebSocketPath, p.CallID, p.SenderID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("callclient: connecting to signaling server: %w", err)
	}
	p.wsConn = conn

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.listen()
	}()
	return nil
}

// Close disconnects from the signaling server and waits for the listener
// goroutine to exit.
func (p *Participant) Close() {
	if p.wsConn != nil {
		p.wsConn.Close()
	}
	p.wg.Wait()
	p.redis.Close()
}

func (p *Participant) listen() {
	for {
		var env wire.Envelope
		if err := p.wsConn.ReadJSON(&env); err != nil {
			p.logger.Errorf("callclient: reading from signaling server: %v", err)
			return
		}
		p.handleEnvelope(env)
	}
}

func (p *Participant) sendEnvelope(env wire.Envelope) error {
	if p.wsConn == nil {
		return fmt.Errorf("callclient: not connected to signaling server")
	}
	if err := p.wsConn.WriteJSON(env); err != nil {
		return fmt.Errorf("callclient: sending envelope: %w", err)
	}
	return nil
}

func (p *Participant) handleEnvelope(env wire.Envelope) {
	switch env.Type {
	case wire.TypeHandshake:
		var bundle wire.HandshakeBundle
		if err := json.Unmarshal(env.Body, &bundle); err != nil {
			p.logger.Errorf("callclient: decoding handshake from sender %d: %v", env.From, err)
			return
		}
		p.handleHandshake(env.From, bundle)

	case wire.TypeSecretAnnounce:
		var bundle wire.SecretAnnounceBundle
		if err := json.Unmarshal(env.Body, &bundle); err != nil {
			p.logger.Errorf("callclient: decoding secret announcement from sender %d: %v", env.From, err)
			return
		}
		p.handleSecretAnnounce(env.From, bundle)

	case wire.TypeFrame:
		var frame wire.FrameEnvelope
		if err := json.Unmarshal(env.Body, &frame); err != nil {
			p.logger.Errorf("callclient: decoding frame from sender %d: %v", env.From, err)
			return
		}
		p.handleFrame(env.From, frame)

	case wire.TypeRatchetAdvanceHint:
		// Informational only: the actual advance is carried out by a
		// subsequent TypeSecretAnnounce. No action needed here.

	default:
		p.logger.Errorf("callclient: unknown envelope type %q from sender %d", env.Type, env.From)
	}
}

func (p *Participant) handleSecretAnnounce(from ratchet.SenderID, bundle wire.SecretAnnounceBundle) {
	p.mu.Lock()
	wrapSecret, ok := p.wrapSecrets[from]
	info := p.peerAnnounceInfo()
	p.mu.Unlock()
	if !ok {
		p.logger.Errorf("callclient: secret announcement from sender %d with no established wrap secret", from)
		return
	}

	ratchetCounter, secret, err := openSenderSecret(wrapSecret, info, bundle.SealedSecret)
	if err != nil {
		p.logger.Errorf("callclient: opening secret announcement from sender %d: %v", from, err)
		return
	}

	p.mu.Lock()
	p.trackReceiveSecret(from, ratchetCounter, secret)
	p.mu.Unlock()
}

// announceSenderSecret seals (ratchetCounter, secret) for peerID under the
// wrap secret established with it and broadcasts the announcement.
func (p *Participant) announceSenderSecret(peerID ratchet.SenderID, info []byte, ratchetCounter ratchet.RatchetCounter, secret ratchet.Secret) error {
	p.mu.Lock()
	wrapSecret, ok := p.wrapSecrets[peerID]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("callclient: no established wrap secret for peer %d", peerID)
	}

	body, err := json.Marshal(wire.SecretAnnounceBundle{
		SealedSecret: sealSenderSecret(wrapSecret, info, ratchetCounter, secret),
	})
	if err != nil {
		return fmt.Errorf("callclient: marshaling secret announcement: %w", err)
	}
	return p.sendEnvelope(wire.Envelope{Type: wire.TypeSecretAnnounce, From: p.SenderID, Body: body})
}

// SendFrame encrypts data as one media frame and broadcasts it to the call.
func (p *Participant) SendFrame(data []byte) error {
	buf := append([]byte(nil), data...)

	p.mu.Lock()
	var mac ratchet.Mac
	ratchetCounter, frameCounter, err := p.ratchetCtx.Encrypt(buf, &mac)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("callclient: encrypting frame: %w", err)
	}

	body, err := json.Marshal(wire.FrameEnvelope{
		RatchetCounter: ratchetCounter,
		FrameCounter:   frameCounter,
		Ciphertext:     buf,
		Mac:            mac,
	})
	if err != nil {
		return fmt.Errorf("callclient: marshaling frame envelope: %w", err)
	}

	return p.sendEnvelope(wire.Envelope{Type: wire.TypeFrame, From: p.SenderID, Body: body})
}

func (p *Participant) handleFrame(from ratchet.SenderID, frame wire.FrameEnvelope) {
	buf := append([]byte(nil), frame.Ciphertext...)

	p.mu.Lock()
	err := p.ratchetCtx.Decrypt(from, frame.RatchetCounter, frame.FrameCounter, buf, frame.Mac)
	p.mu.Unlock()
	if err != nil {
		p.logger.Errorf("callclient: dropping unauthenticated frame from sender %d: %v", from, err)
		return
	}

	p.mu.Lock()
	p.messages = append(p.messages, fmt.Sprintf("[%d] %s", from, buf))
	p.mu.Unlock()

	if p.Gui != nil {
		p.Gui.Update(func(g *gocui.Gui) error {
			return p.updateMessagesView(g)
		})
	}
}
