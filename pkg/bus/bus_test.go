package bus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func quietBus(opts ...Option) *Bus {
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(opts...)
}

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := quietBus()
	var order []string
	for _, id := range []string{"a", "b", "c"} {
		id := id
		if _, ok := b.Subscribe("tick", func(Event) { order = append(order, id) }); !ok {
			t.Fatalf("Subscribe(%q) refused", id)
		}
	}

	if !b.Publish("tick") {
		t.Errorf("Publish() = false, want true")
	}
	want := "abc"
	got := ""
	for _, id := range order {
		got += id
	}
	if got != want {
		t.Errorf("delivery order = %q, want %q", got, want)
	}
}

func TestPublishPayload(t *testing.T) {
	b := quietBus()
	var got Event
	b.Subscribe("widget:error", func(e Event) { got = e })

	wantErr := errors.New("fetch failed")
	b.Publish("widget:error", "tasks", wantErr)

	if got.Name != "widget:error" {
		t.Errorf("Event.Name = %q, want %q", got.Name, "widget:error")
	}
	if got.ID == "" {
		t.Errorf("Event.ID is empty, want generated id")
	}
	if name := WidgetName(got); name != "tasks" {
		t.Errorf("WidgetName() = %q, want %q", name, "tasks")
	}
	if err := WidgetErr(got); !errors.Is(err, wantErr) {
		t.Errorf("WidgetErr() = %v, want %v", err, wantErr)
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	b := quietBus()
	if b.Publish("nobody-home") {
		t.Errorf("Publish() with no subscribers = true, want false")
	}
}

func TestListenerCapRefusesAtFifty(t *testing.T) {
	b := quietBus()
	for i := 0; i < DefaultListenerCap; i++ {
		if _, ok := b.Subscribe("popular", func(Event) {}); !ok {
			t.Fatalf("Subscribe #%d refused, want accepted", i+1)
		}
	}

	sub, ok := b.Subscribe("popular", func(Event) {})
	if ok || sub != nil {
		t.Errorf("Subscribe #51 = (%v, %v), want (nil, false)", sub, ok)
	}
	if got := b.ListenerCount("popular"); got != DefaultListenerCap {
		t.Errorf("ListenerCount() = %d, want %d", got, DefaultListenerCap)
	}
}

func TestListenerCapOption(t *testing.T) {
	b := quietBus(WithListenerCap(2))
	b.Subscribe("x", func(Event) {})
	b.Subscribe("x", func(Event) {})
	if _, ok := b.Subscribe("x", func(Event) {}); ok {
		t.Errorf("Subscribe over configured cap accepted, want refused")
	}
}

func TestSubscribeOnceRunsExactlyOnce(t *testing.T) {
	b := quietBus()
	calls := 0
	b.SubscribeOnce("ping", func(Event) { calls++ })

	b.Publish("ping")
	b.Publish("ping")

	if calls != 1 {
		t.Errorf("once handler ran %d times, want 1", calls)
	}
	if got := b.ListenerCount("ping"); got != 0 {
		t.Errorf("ListenerCount() after once = %d, want 0", got)
	}
}

func TestSubscribeOnceRemovedEvenOnPanic(t *testing.T) {
	b := quietBus()
	calls := 0
	b.SubscribeOnce("ping", func(Event) {
		calls++
		panic("boom")
	})

	if b.Publish("ping") {
		t.Errorf("Publish() = true, want false when the only handler panicked")
	}
	b.Publish("ping")
	if calls != 1 {
		t.Errorf("panicking once handler ran %d times, want 1", calls)
	}
}

func TestSubscribeOnceRepublishSameEvent(t *testing.T) {
	b := quietBus()
	calls := 0
	b.SubscribeOnce("ping", func(Event) {
		calls++
		if calls == 1 {
			b.Publish("ping")
		}
	})

	b.Publish("ping")
	if calls != 1 {
		t.Errorf("once handler ran %d times, want 1", calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := quietBus()
	calls := 0
	sub, _ := b.Subscribe("tick", func(Event) { calls++ })

	if !sub.Unsubscribe() {
		t.Errorf("first Unsubscribe() = false, want true")
	}
	if sub.Unsubscribe() {
		t.Errorf("second Unsubscribe() = true, want false")
	}
	b.Publish("tick")
	if calls != 0 {
		t.Errorf("handler ran %d times after Unsubscribe, want 0", calls)
	}
	if got := len(b.EventNames()); got != 0 {
		t.Errorf("EventNames() has %d entries after last removal, want 0", got)
	}
}

func TestUnsubscribeSiblingDuringPublish(t *testing.T) {
	b := quietBus()
	var ran []string
	var subB *Subscription
	b.Subscribe("tick", func(Event) {
		ran = append(ran, "a")
		subB.Unsubscribe()
	})
	subB, _ = b.Subscribe("tick", func(Event) { ran = append(ran, "b") })
	b.Subscribe("tick", func(Event) { ran = append(ran, "c") })

	b.Publish("tick")

	got := fmt.Sprintf("%v", ran)
	if want := "[a c]"; got != want {
		t.Errorf("handlers run = %v, want %v", got, want)
	}
}

func TestSubscribeDuringPublishNotInvokedSameEmission(t *testing.T) {
	b := quietBus()
	lateCalls := 0
	b.Subscribe("tick", func(Event) {
		b.Subscribe("tick", func(Event) { lateCalls++ })
	})

	b.Publish("tick")
	if lateCalls != 0 {
		t.Errorf("handler registered during publish ran %d times in same emission, want 0", lateCalls)
	}
	b.Publish("tick")
	if lateCalls != 1 {
		t.Errorf("handler registered during publish ran %d times in next emission, want 1", lateCalls)
	}
}

func TestPanicIsolation(t *testing.T) {
	b := quietBus()
	survivorRan := false
	b.Subscribe("tick", func(Event) { panic("first handler") })
	b.Subscribe("tick", func(Event) { survivorRan = true })

	if !b.Publish("tick") {
		t.Errorf("Publish() = false, want true when a later handler succeeded")
	}
	if !survivorRan {
		t.Errorf("handler after panicking sibling did not run")
	}
}

func TestPublishAllHandlersPanic(t *testing.T) {
	b := quietBus()
	b.Subscribe("tick", func(Event) { panic("a") })
	b.Subscribe("tick", func(Event) { panic("b") })

	if b.Publish("tick") {
		t.Errorf("Publish() = true, want false when every handler panicked")
	}
}

func TestEmptyEventNameRefused(t *testing.T) {
	b := quietBus()
	if sub, ok := b.Subscribe("", func(Event) {}); ok || sub != nil {
		t.Errorf("Subscribe(\"\") = (%v, %v), want (nil, false)", sub, ok)
	}
	if b.Publish("") {
		t.Errorf("Publish(\"\") = true, want false")
	}
	if _, ok := b.Subscribe("tick", nil); ok {
		t.Errorf("Subscribe(nil handler) accepted, want refused")
	}
}

func TestEventNamesSorted(t *testing.T) {
	b := quietBus()
	b.Subscribe("zeta", func(Event) {})
	b.Subscribe("alpha", func(Event) {})
	b.Subscribe("mid", func(Event) {})

	got := b.EventNames()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("EventNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EventNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRemoveAllByName(t *testing.T) {
	b := quietBus()
	aCalls, bCalls := 0, 0
	b.Subscribe("a", func(Event) { aCalls++ })
	b.Subscribe("b", func(Event) { bCalls++ })

	b.RemoveAll("a")
	b.Publish("a")
	b.Publish("b")

	if aCalls != 0 {
		t.Errorf("removed handler ran %d times, want 0", aCalls)
	}
	if bCalls != 1 {
		t.Errorf("untouched handler ran %d times, want 1", bCalls)
	}
}

func TestRemoveAllEverything(t *testing.T) {
	b := quietBus()
	b.Subscribe("a", func(Event) {})
	b.Subscribe("b", func(Event) {})

	b.RemoveAll()
	if got := len(b.EventNames()); got != 0 {
		t.Errorf("EventNames() has %d entries after RemoveAll(), want 0", got)
	}
	if b.Publish("a") {
		t.Errorf("Publish() after RemoveAll() = true, want false")
	}
}

func TestListenerCountUnknownName(t *testing.T) {
	b := quietBus()
	if got := b.ListenerCount("never-registered"); got != 0 {
		t.Errorf("ListenerCount() = %d, want 0", got)
	}
}
