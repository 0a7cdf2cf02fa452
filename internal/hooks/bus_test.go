package hooks

import "testing"

func TestBroadcastInvokesAllInPriorityOrder(t *testing.T) {
	b := New()
	var order []int

	b.Subscribe(OnUserJoin, 10, func(args ...interface{}) { order = append(order, 10) })
	b.Subscribe(OnUserJoin, 5, func(args ...interface{}) { order = append(order, 5) })
	b.Subscribe(OnUserJoin, 5, func(args ...interface{}) { order = append(order, 50) })

	b.Broadcast(OnUserJoin)

	want := []int{5, 50, 10}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}

func TestFirstResultStopsAtNonPassthru(t *testing.T) {
	b := New()
	calls := 0

	b.SubscribeFirstResult(OnPreCommand, 1, func(args ...interface{}) Result {
		calls++
		return Passthru
	})
	b.SubscribeFirstResult(OnPreCommand, 2, func(args ...interface{}) Result {
		calls++
		return Deny
	})
	b.SubscribeFirstResult(OnPreCommand, 3, func(args ...interface{}) Result {
		calls++
		return Allow
	})

	res := b.FirstResult(OnPreCommand)
	if res != Deny {
		t.Fatalf("expected Deny, got %v", res)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 subscribers invoked, got %d", calls)
	}
}

func TestFirstResultAllPassthru(t *testing.T) {
	b := New()
	b.SubscribeFirstResult(OnCheckReady, 1, func(args ...interface{}) Result {
		return Passthru
	})

	if res := b.FirstResult(OnCheckReady); res != Passthru {
		t.Fatalf("expected Passthru, got %v", res)
	}
}

func TestFirstResultNoSubscribersIsPassthru(t *testing.T) {
	b := New()
	if res := b.FirstResult(OnWhois); res != Passthru {
		t.Fatalf("expected Passthru with no subscribers, got %v", res)
	}
}

func TestBroadcastRecoversPanickingSubscriber(t *testing.T) {
	b := New()
	ran := false
	b.Subscribe(OnUserQuit, 1, func(args ...interface{}) { panic("boom") })
	b.Subscribe(OnUserQuit, 2, func(args ...interface{}) { ran = true })

	b.Broadcast(OnUserQuit)

	if !ran {
		t.Fatalf("subsequent subscriber should still run after a panic")
	}
}

func TestFirstResultPanicTreatedAsPassthru(t *testing.T) {
	b := New()
	b.SubscribeFirstResult(OnRehash, 1, func(args ...interface{}) Result {
		panic("boom")
	})
	b.SubscribeFirstResult(OnRehash, 2, func(args ...interface{}) Result {
		return Allow
	})

	if res := b.FirstResult(OnRehash); res != Allow {
		t.Fatalf("expected panic to be treated as Passthru, falling through to Allow, got %v", res)
	}
}
