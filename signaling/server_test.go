package signaling

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:1"})
	return NewServer(context.Background(), rdb, logger)
}

// HandleJoin against a call with no published bundle must 404, never panic
// on the missing redis key.
func TestHandleJoinUnknownCall(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	body := strings.NewReader(`{"call_id":"missing","sender_id":1}`)
	req := httptest.NewRequest("POST", "/calls", body)
	rec := httptest.NewRecorder()
	srv.HandleJoin(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestRouterRegistersExpectedPaths(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	router := srv.Router()
	require.NotNil(t, router)

	var seen []string
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err == nil {
			seen = append(seen, tpl)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, seen, "/calls")
	assert.Contains(t, seen, "/ws")
	assert.Contains(t, seen, "/bundles")
}

func TestAddRemoveMemberBookkeeping(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	srv.addMember("call-1", 42, nil)
	srv.mu.Lock()
	_, ok := srv.members["call-1"][42]
	srv.mu.Unlock()
	assert.True(t, ok)

	srv.removeMember("call-1", 42)
	srv.mu.Lock()
	_, stillThere := srv.members["call-1"]
	srv.mu.Unlock()
	assert.False(t, stillThere)
}
