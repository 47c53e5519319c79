// Package signaling runs the group-call control plane: call membership,
// websocket fan-out of secret-announce / ratchet-advance-hint / frame
// envelopes, and the call admin's published X3DH bundle used by rootkex.
// It never decrypts or inspects frame payloads, only relays them.
package signaling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/crypto/key25519"
	"github.com/ringrtc-go/framecrypt/ratchet"
	"github.com/ringrtc-go/framecrypt/rootkex"
	"github.com/ringrtc-go/framecrypt/wire"
)

// Server holds the in-memory connection table and the redis handle backing
// call membership and the admin bundle store.
type Server struct {
	ctx       context.Context
	cancelCtx context.CancelFunc

	redis  *redis.Client
	logger *logrus.Logger

	mu      sync.Mutex
	members map[string]map[ratchet.SenderID]*websocket.Conn

	upgrader websocket.Upgrader
}

// NewServer builds a Server. redisClient and logger must not be nil.
func NewServer(ctx context.Context, redisClient *redis.Client, logger *logrus.Logger) *Server {
	ctx, cancel := context.WithCancel(ctx)
	return &Server{
		ctx:       ctx,
		cancelCtx: cancel,
		redis:     redisClient,
		logger:    logger,
		members:   make(map[string]map[ratchet.SenderID]*websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Close tears down every open connection and the redis client.
func (s *Server) Close() {
	s.cancelCtx()
	s.mu.Lock()
	for _, conns := range s.members {
		for _, conn := range conns {
			conn.Close()
		}
	}
	s.mu.Unlock()
	s.redis.Close()
}

// PublishAdminBundle stores callID's admin bundle so joiners can fetch it
// through HandleJoin.
func (s *Server) PublishAdminBundle(callID string, bundle rootkex.PublishedAdminBundle) error {
	data, err := bundle.MarshalBinary()
	if err != nil {
		return fmt.Errorf("signaling: marshaling admin bundle: %w", err)
	}
	return s.redis.Set(s.ctx, fmt.Sprintf(config.CallAdminBundleKey, callID), data, 0).Err()
}

// HandlePublishBundle lets a call admin publish its X3DH bundle over HTTP,
// the counterpart to PublishAdminBundle for a standalone client process.
func (s *Server) HandlePublishBundle(w http.ResponseWriter, r *http.Request) {
	var req wire.PublishBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Errorf("signaling: decoding publish-bundle request: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	bundle := rootkex.PublishedAdminBundle{
		IdentityKey: key25519.PublicKey(req.AdminIdentityKey),
		Prekey:      key25519.PublicKey(req.AdminPrekey),
		PrekeySig:   req.AdminPrekeySig,
	}
	if err := bundle.Verify(); err != nil {
		s.logger.Errorf("signaling: rejecting admin bundle with bad signature: %v", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	if err := s.PublishAdminBundle(req.CallID, bundle); err != nil {
		s.logger.Errorf("signaling: storing admin bundle: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleJoin answers a wire.JoinRequest with the call's published admin
// bundle, registering the requester as a call member.
func (s *Server) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req wire.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Errorf("signaling: decoding join request: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	data, err := s.redis.Get(s.ctx, fmt.Sprintf(config.CallAdminBundleKey, req.CallID)).Bytes()
	if err != nil {
		s.logger.Errorf("signaling: call %s has no published admin bundle: %v", req.CallID, err)
		http.Error(w, "call not found", http.StatusNotFound)
		return
	}

	var bundle rootkex.PublishedAdminBundle
	if err := bundle.UnmarshalBinary(data); err != nil {
		s.logger.Errorf("signaling: decoding stored admin bundle: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := s.redis.SAdd(s.ctx, fmt.Sprintf(config.CallMembersKey, req.CallID), req.SenderID).Err(); err != nil {
		s.logger.Errorf("signaling: recording membership: %v", err)
	}

	resp := wire.JoinResponse{
		AdminIdentityKey: [32]byte(bundle.IdentityKey),
		AdminPrekey:      [32]byte(bundle.Prekey),
		AdminPrekeySig:   bundle.PrekeySig,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Errorf("signaling: encoding join response: %v", err)
	}
}

// HandleWebSocket upgrades the request and fans out every subsequently
// received envelope to the other members of the same call.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	callID := r.URL.Query().Get("callId")
	senderIDParam := r.URL.Query().Get("senderId")
	if callID == "" || senderIDParam == "" {
		http.Error(w, "callId and senderId are required", http.StatusBadRequest)
		return
	}
	var senderID ratchet.SenderID
	if _, err := fmt.Sscanf(senderIDParam, "%d", &senderID); err != nil {
		http.Error(w, "invalid senderId", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("signaling: upgrading websocket: %v", err)
		return
	}
	defer conn.Close()

	s.addMember(callID, senderID, conn)
	s.logger.Infof("signaling: sender %d joined call %s", senderID, callID)
	defer func() {
		s.removeMember(callID, senderID)
		s.logger.Infof("signaling: sender %d left call %s", senderID, callID)
	}()

	for {
		var env wire.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			s.logger.Errorf("signaling: reading from sender %d: %v", senderID, err)
			return
		}
		if len(env.Body) > config.MaxFrameBytes {
			s.logger.Errorf("signaling: sender %d sent an oversized envelope, dropping", senderID)
			continue
		}
		env.From = senderID
		s.broadcast(callID, senderID, env)
	}
}

func (s *Server) addMember(callID string, senderID ratchet.SenderID, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[callID] == nil {
		s.members[callID] = make(map[ratchet.SenderID]*websocket.Conn)
	}
	s.members[callID][senderID] = conn
}

func (s *Server) removeMember(callID string, senderID ratchet.SenderID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[callID], senderID)
	if len(s.members[callID]) == 0 {
		delete(s.members, callID)
	}
}

// broadcast relays env to every member of callID except from. Unlike a
// chat relay, it does not queue envelopes for members who are currently
// disconnected: a media frame or secret announcement has no value to a
// peer that rejoins later, so a disconnected recipient simply misses it.
// A rejoining participant gets a fresh handshake through HandleJoin
// instead of backfill from a queue.
func (s *Server) broadcast(callID string, from ratchet.SenderID, env wire.Envelope) {
	s.mu.Lock()
	recipients := make([]*websocket.Conn, 0, len(s.members[callID]))
	for id, conn := range s.members[callID] {
		if id == from {
			continue
		}
		recipients = append(recipients, conn)
	}
	s.mu.Unlock()

	for _, conn := range recipients {
		if err := conn.WriteJSON(env); err != nil {
			s.logger.Errorf("signaling: relaying envelope from sender %d: %v", from, err)
		}
	}
}
