package events

import (
	"testing"
	"time"
)

func TestBasicPubSub(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe(TopicLit)

	h.Publish(TopicLit, "hello")

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "hello" {
			t.Errorf("expected payload 'hello', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestRetainedMessage(t *testing.T) {
	h := NewHub(2)
	h.Publish(TopicState, "persist")
	h.Publish(TopicState, "latest")

	sub := h.Subscribe(TopicState)
	expectOneOf(t, sub, "latest")
	expectNoMessage(t, sub)

	if v, ok := h.Retained(TopicState); !ok || v != "latest" {
		t.Fatalf("retained = %v, %v", v, ok)
	}
}

func TestNilClearsRetained(t *testing.T) {
	h := NewHub(2)
	h.Publish(TopicState, "x")
	h.Publish(TopicState, nil)
	if _, ok := h.Retained(TopicState); ok {
		t.Fatal("retained survived a nil publish")
	}
	expectNoMessage(t, h.Subscribe(TopicState))
}

func TestTopicsAreExact(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe("lamps/lit")
	b := h.Subscribe("lamps")
	h.Publish("lamps/lit", 3)
	expectOneOf(t, a, 3)
	expectNoMessage(t, b)
}

func TestDropOldestWhenFull(t *testing.T) {
	h := NewHub(2)
	sub := h.Subscribe(TopicLit)
	for i := 1; i <= 5; i++ {
		h.Publish(TopicLit, i)
	}
	expectOneOf(t, sub, 4)
	expectOneOf(t, sub, 5)
	expectNoMessage(t, sub)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(2)
	sub := h.Subscribe(TopicLit)
	other := h.Subscribe(TopicLit)
	sub.Unsubscribe()

	if _, ok := <-sub.Channel(); ok {
		t.Fatal("channel still open after unsubscribe")
	}
	h.Publish(TopicLit, "after")
	expectOneOf(t, other, "after")

	// second call is a no-op
	sub.Unsubscribe()
}

func TestConcurrentObserver(t *testing.T) {
	h := NewHub(16)
	sub := h.Subscribe(TopicLit)
	done := make(chan []int)
	go func() {
		var got []int
		for m := range sub.Channel() {
			got = append(got, m.Payload.(int))
			if len(got) == 9 {
				break
			}
		}
		done <- got
	}()
	for i := 0; i < 9; i++ {
		h.Publish(TopicLit, i)
	}
	select {
	case got := <-done:
		for i, v := range got {
			if v != i {
				t.Fatalf("got %v", got)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("observer stalled")
	}
}

func expectOneOf(t *testing.T, s *Subscription, want any) {
	t.Helper()
	select {
	case m := <-s.Channel():
		if m.Payload != want {
			t.Fatalf("topic %q: got %v, want %v", s.Topic(), m.Payload, want)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("topic %q: timeout waiting for %v", s.Topic(), want)
	}
}

func expectNoMessage(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case m := <-s.Channel():
		t.Fatalf("topic %q: unexpected %v", s.Topic(), m.Payload)
	case <-time.After(20 * time.Millisecond):
	}
}
