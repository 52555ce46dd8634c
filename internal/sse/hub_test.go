package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"notify_relay/internal/domain"
	"notify_relay/internal/model"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

func TestHubFanOut(t *testing.T) {
	hub := runHub(t)

	all := &Client{Ch: make(chan model.Event, 1)}
	repliesOnly := &Client{Outcome: domain.OutcomeReplied, Ch: make(chan model.Event, 1)}
	hub.Register(all)
	hub.Register(repliesOnly)
	defer hub.Unregister(all)
	defer hub.Unregister(repliesOnly)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 5*time.Millisecond)

	require.True(t, hub.Broadcast(model.Event{ID: "a", Outcome: domain.OutcomeTimeout}))

	select {
	case got := <-all.Ch:
		require.Equal(t, "a", got.ID)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected event for unfiltered client")
	}

	select {
	case got := <-repliesOnly.Ch:
		t.Fatalf("filtered client received %s", got.Outcome)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregister(t *testing.T) {
	hub := runHub(t)

	client := &Client{Ch: make(chan model.Event, 1)}
	hub.Register(client)
	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()

	accepted := 0
	for i := 0; i < 100; i++ {
		if hub.Broadcast(model.Event{ID: "x"}) {
			accepted++
		}
	}
	require.Equal(t, 64, accepted)
}

func TestHubUnregisterAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := &Client{Ch: make(chan model.Event, 1)}
	hub.Register(client)
	cancel()
	<-done

	select {
	case <-hub.Done():
	default:
		t.Fatal("hub not marked done after Run exited")
	}

	returned := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after hub stopped")
	}
}
