package callclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"

	"github.com/ringrtc-go/framecrypt/crypto/fingerprint"
	"github.com/ringrtc-go/framecrypt/ratchet"
)

// InitGui builds the gocui screen and wires up its layout manager.
func (p *Participant) InitGui() error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fmt.Errorf("callclient: initializing terminal UI: %w", err)
	}
	p.Gui = g
	g.SetManagerFunc(p.layout)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, p.quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("input", gocui.KeyEnter, gocui.ModNone, p.sendFrameHandler); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlF, gocui.ModNone, p.showFingerprints); err != nil {
		return err
	}
	return nil
}

func (p *Participant) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView("messages", 0, 0, maxX-1, maxY-5); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = fmt.Sprintf("Call %s — sender %d", p.CallID, p.SenderID)
		v.Autoscroll = true
		v.Wrap = true
		p.updateMessagesView(g)
	}

	if v, err := g.SetView("input", 0, maxY-4, maxX-1, maxY-2); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Type a frame"
		v.Editable = true
		v.Wrap = true
		g.SetCurrentView("input")
	}

	return nil
}

func (p *Participant) updateMessagesView(g *gocui.Gui) error {
	v, err := g.View("messages")
	if err != nil {
		return err
	}
	v.Clear()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, msg := range p.messages {
		fmt.Fprintln(v, msg)
	}
	return nil
}

func (p *Participant) sendFrameHandler(g *gocui.Gui, v *gocui.View) error {
	text := strings.TrimSpace(v.Buffer())
	if text == "" {
		return nil
	}

	if err := p.SendFrame([]byte(text)); err != nil {
		p.logger.Errorf("callclient: sending frame: %v", err)
	} else {
		p.mu.Lock()
		p.messages = append(p.messages, "[you] "+text)
		p.mu.Unlock()
	}

	if err := p.MaybeAdvanceSendRatchet(); err != nil {
		p.logger.Errorf("callclient: advancing send ratchet: %v", err)
	}

	v.Clear()
	v.SetCursor(0, 0)
	return p.updateMessagesView(g)
}

// showFingerprints prints the numeric fingerprint of the wrap secret
// shared with each peer this participant has handshook with, so the
// people on a call can read them aloud to confirm nobody is being
// man-in-the-middled.
func (p *Participant) showFingerprints(g *gocui.Gui, v *gocui.View) error {
	p.mu.Lock()
	peers := make([]ratchet.SenderID, 0, len(p.wrapSecrets))
	for id := range p.wrapSecrets {
		peers = append(peers, id)
	}
	p.mu.Unlock()

	if len(peers) == 0 {
		p.mu.Lock()
		p.messages = append(p.messages, "[fingerprint] no peers handshook yet")
		p.mu.Unlock()
	}

	for _, peerID := range peers {
		digits, err := p.FingerprintWith(peerID)
		if err != nil {
			p.logger.Errorf("callclient: fingerprinting sender %d: %v", peerID, err)
			continue
		}
		p.mu.Lock()
		p.messages = append(p.messages, fmt.Sprintf("[fingerprint] sender %d: %s", peerID, formatFingerprint(digits)))
		p.mu.Unlock()
	}

	return p.updateMessagesView(g)
}

// formatFingerprint renders fingerprint digits as space-separated groups
// of five, the same grouping Signal-style numeric fingerprints use.
func formatFingerprint(digits [fingerprint.Digits]int) string {
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && i%5 == 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", d)
	}
	return b.String()
}

func (p *Participant) quit(*gocui.Gui, *gocui.View) error {
	p.logger.Info("callclient: shutting down")
	p.Close()
	return gocui.ErrQuit
}
