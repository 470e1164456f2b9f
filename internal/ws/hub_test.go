package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectionCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", want)
}

func TestHub_BroadcastFanout(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := NewClient(hub, nil)
	require.True(t, hub.add(client))
	waitForClients(t, hub, 1)

	hub.Broadcast(Message{Type: "alert.created", Data: "flood warning"})

	select {
	case payload := <-client.send:
		assert.Contains(t, string(payload), "alert.created")
		assert.Contains(t, string(payload), "flood warning")
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

func TestHub_AddAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHub()
	// Never run: with the run loop gone, only the shutdown signal can
	// unblock registration.
	hub.Shutdown()

	client := NewClient(hub, nil)

	added := make(chan bool, 1)
	go func() { added <- hub.add(client) }()

	select {
	case ok := <-added:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("add blocked after shutdown")
	}

	removed := make(chan struct{})
	go func() {
		hub.remove(client)
		close(removed)
	}()

	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("remove blocked after shutdown")
	}
}

func TestHub_ShutdownClearsClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil)
	require.True(t, hub.add(client))
	waitForClients(t, hub, 1)

	hub.Shutdown()
	waitForClients(t, hub, 0)

	// The run loop closes the send channel on shutdown.
	select {
	case _, open := <-client.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}