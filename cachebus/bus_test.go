package cachebus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestPublishSubscribeRoundTrip requires a reachable Redis instance (set
// CACHEBUS_TEST_REDIS_ADDR, e.g. "localhost:6379") and is skipped otherwise.
func TestPublishSubscribeRoundTrip(t *testing.T) {
	addr := os.Getenv("CACHEBUS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CACHEBUS_TEST_REDIS_ADDR not set, skipping Redis integration test")
	}

	bus, err := New(addr, WithChannel("vaultdb:test"))
	require.NoError(t, err)
	t.Cleanup(func() { bus.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, closeSub := bus.Subscribe(ctx)
	defer closeSub()

	time.Sleep(50 * time.Millisecond) // let the subscription register
	require.NoError(t, bus.Publish(ctx, InvalidateAll))

	select {
	case got := <-events:
		require.Equal(t, InvalidateAll, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestWithChannelOverridesDefault(t *testing.T) {
	b := &Bus{channel: defaultChannel}
	WithChannel("custom")(b)
	require.Equal(t, "custom", b.channel)
}
