package watch_test

import (
	"testing"

	"xnmp/internal/logging"
	"xnmp/internal/watch"
)

func TestEnsureSharesTokenPerClient(t *testing.T) {
	tracker := watch.NewTracker(logging.NewNop())

	first := tracker.Ensure(":1.42")
	second := tracker.Ensure(":1.42")
	if first != second {
		t.Fatal("same client must share one token")
	}

	other := tracker.Ensure(":1.43")
	if other == first {
		t.Fatal("distinct clients must not share tokens")
	}
	if tracker.Len() != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", tracker.Len())
	}
}

func TestDisconnectedFiresOnlyThatClient(t *testing.T) {
	tracker := watch.NewTracker(logging.NewNop())
	gone := tracker.Ensure(":1.42")
	stays := tracker.Ensure(":1.43")

	tracker.Disconnected(":1.42")

	if !gone.Fired() {
		t.Fatal("disconnected client's token not fired")
	}
	if stays.Fired() {
		t.Fatal("unrelated client's token fired")
	}
	if tracker.Len() != 1 {
		t.Fatalf("expected 1 tracked client, got %d", tracker.Len())
	}

	// A reconnecting client under the same unique name gets a fresh token.
	fresh := tracker.Ensure(":1.42")
	if fresh == gone || fresh.Fired() {
		t.Fatal("expected a fresh unfired token after disconnect")
	}
}

func TestDisconnectedUnknownClientIsNoOp(t *testing.T) {
	tracker := watch.NewTracker(logging.NewNop())
	tracker.Disconnected(":1.99")
	if tracker.Len() != 0 {
		t.Fatal("tracker should stay empty")
	}
}

func TestShutdownFiresEveryToken(t *testing.T) {
	tracker := watch.NewTracker(logging.NewNop())
	a := tracker.Ensure(":1.1")
	b := tracker.Ensure(":1.2")

	tracker.Shutdown()

	if !a.Fired() || !b.Fired() {
		t.Fatal("shutdown must fire all client tokens")
	}
	if tracker.Len() != 0 {
		t.Fatal("shutdown must clear the tracker")
	}
}
