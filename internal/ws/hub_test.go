package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, memberID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		memberID: memberID,
		send:     make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run(context.Background())

	memberID := uuid.New()
	client := mockClient(hub, memberID)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[memberID] == nil {
		t.Fatal("member room not created")
	}
	if !hub.rooms[memberID][client] {
		t.Fatal("client not registered in member room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run(context.Background())

	memberID := uuid.New()
	client := mockClient(hub, memberID)

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[memberID] != nil {
		t.Fatal("member room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleMember(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run(context.Background())

	member1 := uuid.New()
	member2 := uuid.New()

	client1 := mockClient(hub, member1)
	client2 := mockClient(hub, member2)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	// Broadcast to member1 only
	testPayload := json.RawMessage(`{"order_id":"test-123"}`)
	event := Event{
		Type:    "order.placed",
		Payload: testPayload,
	}
	hub.BroadcastToMember(member1, event)

	// Check client1 receives the message
	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != "order.placed" {
			t.Errorf("expected type 'order.placed', got '%s'", received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	// Check client2 does NOT receive the message
	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different member")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameMember(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run(context.Background())

	memberID := uuid.New()
	client1 := mockClient(hub, memberID)
	client2 := mockClient(hub, memberID)
	client3 := mockClient(hub, memberID)

	// Register all clients to same member
	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	// Broadcast event
	testPayload := json.RawMessage(`{"status":"DELIVERING"}`)
	event := Event{
		Type:    "order.status_changed",
		Payload: testPayload,
	}
	hub.BroadcastToMember(memberID, event)

	// All three clients should receive the message
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "order.status_changed" {
				t.Errorf("client%d: expected type 'order.status_changed', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestHubMultipleMembersIsolation(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run(context.Background())

	member1 := uuid.New()
	member2 := uuid.New()
	member3 := uuid.New()

	// Create 2 clients per member
	clients := map[uuid.UUID][]*Client{
		member1: {mockClient(hub, member1), mockClient(hub, member1)},
		member2: {mockClient(hub, member2), mockClient(hub, member2)},
		member3: {mockClient(hub, member3), mockClient(hub, member3)},
	}

	// Register all clients
	for _, clientList := range clients {
		for _, client := range clientList {
			hub.register <- client
		}
	}
	time.Sleep(10 * time.Millisecond)

	// Broadcast to member2 only
	event := Event{
		Type:    "loyalty.redeemed",
		Payload: json.RawMessage(`{"member_id":"` + member2.String() + `"}`),
	}
	hub.BroadcastToMember(member2, event)

	// Only member2 clients should receive
	for memberID, clientList := range clients {
		for i, client := range clientList {
			select {
			case msg := <-client.send:
				if memberID != member2 {
					t.Fatalf("member %s client %d should not receive message", memberID, i)
				}
				var received Event
				if err := json.Unmarshal(msg, &received); err != nil {
					t.Fatalf("unmarshal error: %v", err)
				}
				if received.Type != "loyalty.redeemed" {
					t.Errorf("wrong event type: %s", received.Type)
				}
			case <-time.After(50 * time.Millisecond):
				if memberID == member2 {
					t.Fatalf("member2 client %d should have received message", i)
				}
				// Expected for other members
			}
		}
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run(context.Background())

	memberID := uuid.New()
	client1 := mockClient(hub, memberID)
	client2 := mockClient(hub, memberID)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[memberID]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms[memberID]))
	}
	hub.mu.RUnlock()

	// Unregister first client
	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[memberID]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[memberID]))
	}
	hub.mu.RUnlock()

	// Unregister second client
	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms[memberID] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestBroadcastToNonExistentMember(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run(context.Background())

	// Create a client for member1
	member1 := uuid.New()
	client1 := mockClient(hub, member1)
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	// Broadcast to member2 (doesn't exist)
	member2 := uuid.New()
	event := Event{
		Type:    "order.placed",
		Payload: json.RawMessage(`{"test":"data"}`),
	}
	hub.BroadcastToMember(member2, event)

	// client1 should NOT receive anything
	select {
	case <-client1.send:
		t.Fatal("client should not receive message for different member")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("order.status_changed", map[string]string{"order_id": "ORD-1"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if string(ev.Payload) != `{"order_id":"ORD-1"}` {
		t.Errorf("payload: got %s", ev.Payload)
	}

	if _, err := NewEvent("bad", make(chan int)); err == nil {
		t.Error("expected marshal error for unsupported payload")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := mockClient(hub, uuid.New())
	hub.register <- client
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-client.send; ok {
		t.Fatal("client send channel should be closed on shutdown")
	}
}

func TestHubStopped_SendsDoNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ev, _ := NewEvent("order.placed", map[string]string{"id": "ORD-1"})
		// More than the broadcast buffer holds.
		for i := 0; i < 300; i++ {
			hub.BroadcastToMember(uuid.New(), ev)
		}
		client := mockClient(hub, uuid.New())
		if hub.join(client) {
			t.Error("join should fail on a stopped hub")
		}
		hub.leave(client)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("sends blocked after the hub stopped")
	}
}
