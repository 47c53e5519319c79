// Package config centralizes the package-level settings shared by the
// signaling server and the participant client: network addresses, HTTP
// routes, and the redis key templates each side formats against.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	ServerAddress = "localhost:8080"
	RedisAddress  = "localhost:6379"

	BundlePath    = "/bundles"
	JoinPath      = "/calls"
	WebSocketPath = "/ws"

	// Redis key templates. Each takes (callID) or (callID, senderID)
	// depending on scope.
	CallMembersKey      = "call:%s:members"
	CallAdminBundleKey  = "call:%s:admin-bundle"
	ParticipantStateKey = "call:%s:participant:%s:ratchet"

	// MaxFrameBytes bounds the Body of a single envelope relayed over the
	// websocket fan-out: the signaling server drops, instead of relaying,
	// any envelope whose Body is longer.
	MaxFrameBytes = 1 << 20

	// RatchetAdvanceHintChance is how many sent frames a participant
	// waits, on average, before rolling its own sender ratchet forward,
	// expressed as a 1-in-N chance per frame.
	RatchetAdvanceHintChance = 20
)

// LoadDotEnv loads a .env file if present, then overrides ServerAddress,
// RedisAddress and MaxFrameBytes from the CALL_SERVER_ADDRESS,
// CALL_REDIS_ADDRESS and CALL_MAX_FRAME_BYTES environment variables; the
// other defaults above are not read from the environment. Missing .env
// files are not an error:
// deployments that configure purely through the environment never need one.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	if v := os.Getenv("CALL_SERVER_ADDRESS"); v != "" {
		ServerAddress = v
	}
	if v := os.Getenv("CALL_REDIS_ADDRESS"); v != "" {
		RedisAddress = v
	}
	if v := os.Getenv("CALL_MAX_FRAME_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			MaxFrameBytes = n
		}
	}
	return nil
}
