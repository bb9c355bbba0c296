package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKey(t *testing.T) {
	if got := key("ABCDE"); got != "glou:session:ABCDE" {
		t.Fatalf("expected glou:session:ABCDE, got %s", got)
	}
}

func TestNewSessionCacheDefaultsTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	c := NewSessionCache(client, 0).(*sessionCache)
	if c.ttl != DefaultTTL {
		t.Fatalf("expected ttl %s, got %s", DefaultTTL, c.ttl)
	}
	c = NewSessionCache(client, time.Minute).(*sessionCache)
	if c.ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %s", c.ttl)
	}
}
