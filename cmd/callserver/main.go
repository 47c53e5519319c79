// callserver runs the group-call signaling server: membership, the
// websocket fan-out of secret announcements and encrypted frames, and the
// call admin's published X3DH bundle store. It never decrypts media.
package main

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ringrtc-go/framecrypt/config"
	"github.com/ringrtc-go/framecrypt/signaling"
)

func main() {
	logger := logrus.New()

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	srv := signaling.NewServer(
		context.Background(),
		redis.NewClient(&redis.Options{Addr: config.RedisAddress}),
		logger,
	)
	defer srv.Close()

	logger.Infof("signaling server running on %s", config.ServerAddress)
	if err := http.ListenAndServe(config.ServerAddress, srv.Router()); err != nil {
		logger.Fatalf("Error starting server: %v", err)
	}

	logger.Info("Closing server...")
}
