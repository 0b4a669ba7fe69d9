// Package events is a small in-process publish/subscribe hub. Every
// message is retained per topic; late subscribers get the latest one.
package events

import (
	"sync"
)

// Topic names used by the program.
const (
	TopicState = "program/state"
	TopicLit   = "lamps/lit"
)

type Message struct {
	Topic   string
	Payload any
}

type Subscription struct {
	topic string
	ch    chan *Message
	hub   *Hub
}

func (s *Subscription) Topic() string            { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.hub.unsubscribe(s) }

type node struct {
	subs     []*Subscription
	retained *Message
}

// Hub is safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	topics map[string]*node
	qLen   int
}

// NewHub creates a hub with the given per-subscription queue length.
func NewHub(queueLen int) *Hub {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Hub{topics: make(map[string]*node), qLen: queueLen}
}

func (h *Hub) node(topic string) *node {
	n, ok := h.topics[topic]
	if !ok {
		n = &node{}
		h.topics[topic] = n
	}
	return n
}

// Subscribe registers interest in topic. The retained message, if any, is
// queued immediately.
func (h *Hub) Subscribe(topic string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{topic: topic, ch: make(chan *Message, h.qLen), hub: h}
	n := h.node(topic)
	n.subs = append(n.subs, sub)
	if n.retained != nil {
		sub.ch <- n.retained
	}
	return sub
}

// Publish delivers payload to every subscriber of topic and retains it.
// A nil payload clears the retained message. Full queues drop their oldest
// entry.
func (h *Hub) Publish(topic string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := &Message{Topic: topic, Payload: payload}
	n := h.node(topic)
	for _, sub := range n.subs {
		select {
		case sub.ch <- msg:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- msg
		}
	}
	if payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

// Retained returns the latest payload on topic.
func (h *Hub) Retained(topic string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.topics[topic]
	if !ok || n.retained == nil {
		return nil, false
	}
	return n.retained.Payload, true
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := h.topics[sub.topic]
	if !ok {
		return
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			close(sub.ch)
			break
		}
	}
	if len(n.subs) == 0 && n.retained == nil {
		delete(h.topics, sub.topic)
	}
}
