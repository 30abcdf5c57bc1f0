package ws

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeSubscriber struct {
	received chan []byte
	sendErr  error
	closed   chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		received: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (f *fakeSubscriber) Send(payload []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.received <- payload
	return nil
}

func (f *fakeSubscriber) Close() {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
}

func (f *fakeSubscriber) waitForEvent(t *testing.T) envelope {
	t.Helper()
	select {
	case payload := <-f.received:
		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatalf("decode event failed: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return envelope{}
	}
}

func (f *fakeSubscriber) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case payload := <-f.received:
		t.Fatalf("expected no delivery, got %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishReachesOnlyJoinedGroup(t *testing.T) {
	hub := newTestHub()
	inGroup := newFakeSubscriber()
	otherGroup := newFakeSubscriber()

	hub.Join(ProjectGroup(7), inGroup)
	hub.Join(ProjectGroup(8), otherGroup)

	hub.Publish(ProjectGroup(7), EventTaskCreated, map[string]int64{"taskId": 1})

	env := inGroup.waitForEvent(t)
	if env.Event != EventTaskCreated {
		t.Fatalf("expected %s, got %s", EventTaskCreated, env.Event)
	}
	otherGroup.expectNothing(t)
}

func TestUserGroupIsolatedFromProjectGroups(t *testing.T) {
	hub := newTestHub()
	userClient := newFakeSubscriber()
	projectClient := newFakeSubscriber()

	hub.Join(UserGroup(5), userClient)
	hub.Join(ProjectGroup(5), projectClient)

	hub.Publish(UserGroup(5), EventInvitationReceived, map[string]any{"invitationId": 3})

	env := userClient.waitForEvent(t)
	if env.Event != EventInvitationReceived {
		t.Fatalf("expected %s, got %s", EventInvitationReceived, env.Event)
	}
	projectClient.expectNothing(t)
}

func TestDuplicateJoinDeliversOnce(t *testing.T) {
	hub := newTestHub()
	client := newFakeSubscriber()

	hub.Join(ProjectGroup(1), client)
	hub.Join(ProjectGroup(1), client)

	hub.Publish(ProjectGroup(1), EventNoteAdded, nil)

	client.waitForEvent(t)
	client.expectNothing(t)
}

func TestLeaveStopsDelivery(t *testing.T) {
	hub := newTestHub()
	client := newFakeSubscriber()

	hub.Join(ProjectGroup(1), client)
	hub.Leave(ProjectGroup(1), client)

	hub.Publish(ProjectGroup(1), EventTaskDeleted, nil)
	client.expectNothing(t)
}

func TestLeaveWithoutJoinIsNoOp(t *testing.T) {
	hub := newTestHub()
	client := newFakeSubscriber()

	hub.Leave(ProjectGroup(1), client)
	hub.Publish(ProjectGroup(1), EventTaskDeleted, nil)
	client.expectNothing(t)
}

func TestDropRemovesFromAllGroupsAndCloses(t *testing.T) {
	hub := newTestHub()
	client := newFakeSubscriber()

	hub.Join(ProjectGroup(1), client)
	hub.Join(ProjectGroup(2), client)
	hub.Join(UserGroup(9), client)

	hub.Drop(client)

	select {
	case <-client.closed:
	case <-time.After(time.Second):
		t.Fatal("expected client to be closed on drop")
	}

	hub.Publish(ProjectGroup(1), EventTaskCreated, nil)
	hub.Publish(ProjectGroup(2), EventTaskCreated, nil)
	hub.Publish(UserGroup(9), EventInvitationReceived, nil)
	client.expectNothing(t)
}

func TestFailedSendDropsClient(t *testing.T) {
	hub := newTestHub()
	broken := newFakeSubscriber()
	broken.sendErr = errors.New("connection reset")
	healthy := newFakeSubscriber()

	hub.Join(ProjectGroup(1), broken)
	hub.Join(ProjectGroup(1), healthy)

	hub.Publish(ProjectGroup(1), EventTaskCreated, nil)

	healthy.waitForEvent(t)
	select {
	case <-broken.closed:
	case <-time.After(time.Second):
		t.Fatal("expected failing client to be closed")
	}
}

func TestDeliveryOrderWithinGroup(t *testing.T) {
	hub := newTestHub()
	client := newFakeSubscriber()
	hub.Join(ProjectGroup(1), client)

	for i := 0; i < 5; i++ {
		hub.Publish(ProjectGroup(1), EventTaskStatusUpdated, map[string]int{"seq": i})
	}

	for i := 0; i < 5; i++ {
		env := client.waitForEvent(t)
		data, ok := env.Data.(map[string]any)
		if !ok {
			t.Fatalf("unexpected payload shape: %#v", env.Data)
		}
		if seq := int(data["seq"].(float64)); seq != i {
			t.Fatalf("expected event %d in order, got %d", i, seq)
		}
	}
}

func TestPublishToEmptyGroupIsSafe(t *testing.T) {
	hub := newTestHub()
	hub.Publish(ProjectGroup(99), EventProjectDeleted, map[string]int64{"id": 99})

	// Verify the hub still serves later subscriptions.
	client := newFakeSubscriber()
	hub.Join(ProjectGroup(99), client)
	hub.Publish(ProjectGroup(99), EventProjectDeleted, map[string]int64{"id": 99})
	client.waitForEvent(t)
}
