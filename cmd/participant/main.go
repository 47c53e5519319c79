// participant is a terminal demo client for one participant of a group
// call. The first participant to run for a given call id should pass
// --admin, publishing a freshly generated X3DH bundle; every later
// participant joins against it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"

	"github.com/ringrtc-go/framecrypt/callclient"
	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/crypto/key25519"
	"github.com/ringrtc-go/framecrypt/ratchet"
	"github.com/ringrtc-go/framecrypt/rootkex"
)

func main() {
	isAdmin := flag.Bool("admin", false, "publish a fresh X3DH bundle and host the call")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Println("Usage: participant [--admin] <callID> <senderID>")
		os.Exit(1)
	}
	callID := args[0]
	senderID, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		fmt.Printf("invalid senderID %q: %v\n", args[1], err)
		os.Exit(1)
	}

	logger := logrus.New()
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	p, err := callclient.NewParticipant(callID, ratchet.SenderID(senderID), logger)
	if err != nil {
		logger.Fatalf("Error creating participant: %v", err)
	}
	if err := p.Load(); err != nil {
		logger.Fatalf("Error loading saved state: %v", err)
	}

	if *isAdmin {
		bundle, err := freshAdminBundle()
		if err != nil {
			logger.Fatalf("Error generating admin bundle: %v", err)
		}
		if err := p.BecomeAdmin(bundle); err != nil {
			logger.Fatalf("Error publishing admin bundle: %v", err)
		}
	}

	if err := p.InitGui(); err != nil {
		logger.Fatalf("Error initializing terminal UI: %v", err)
	}

	if err := p.ConnectWebSocket(); err != nil {
		logger.Fatalf("Error connecting to signaling server: %v", err)
	}

	if !*isAdmin {
		if err := p.Join(); err != nil {
			logger.Fatalf("Error joining call: %v", err)
		}
	}

	if err := p.Gui.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		logger.Fatalf("Error in terminal UI main loop: %v", err)
	}

	if err := p.Save(); err != nil {
		logger.Errorf("Error saving state: %v", err)
	}

	logger.Info("Application exited.")
}

func freshAdminBundle() (*rootkex.AdminPrekeyBundle, error) {
	identity, err := key25519.New()
	if err != nil {
		return nil, err
	}
	prekey, err := key25519.New()
	if err != nil {
		return nil, err
	}
	return &rootkex.AdminPrekeyBundle{IdentityKey: *identity, Prekey: *prekey}, nil
}
