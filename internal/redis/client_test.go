package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/healseek/appointment-service/internal/config"
)

func TestDialUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// nothing listens on a closed localhost port, so the dial-time ping
	// must fail instead of returning a client that breaks later
	rdb, err := Dial(ctx, config.Config{RedisAddr: "127.0.0.1:1"})
	if err == nil {
		rdb.Close()
		t.Fatal("expected error dialing unreachable redis")
	}
}
