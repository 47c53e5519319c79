package signaling

import (
	"github.com/gorilla/mux"

	"github.com/ringrtc-go/framecrypt/config"
)

// Router builds the mux.Router serving the join and websocket endpoints.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(config.BundlePath, s.HandlePublishBundle).Methods("POST")
	r.HandleFunc(config.JoinPath, s.HandleJoin).Methods("POST")
	r.HandleFunc(config.WebSocketPath, s.HandleWebSocket)
	return r
}
