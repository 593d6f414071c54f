package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoReceiver is returned when no handler is attached to the tab.
	ErrNoReceiver = errors.New("receiving end does not exist")

	// ErrUnknownType is returned for message types a receiver does not handle.
	ErrUnknownType = errors.New("unknown message type")
)

// Receiver handles messages addressed to one tab.
type Receiver interface {
	Handle(ctx context.Context, msg Message) (Response, error)
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(ctx context.Context, msg Message) (Response, error)

func (f ReceiverFunc) Handle(ctx context.Context, msg Message) (Response, error) {
	return f(ctx, msg)
}

// Router delivers messages to the receiver registered for a tab id.
type Router struct {
	mu        sync.RWMutex
	receivers map[string]Receiver
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{receivers: make(map[string]Receiver)}
}

// Register attaches r to tabID, replacing any previous receiver.
func (r *Router) Register(tabID string, recv Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receivers[tabID] = recv
}

// RegisterIfAbsent attaches recv to tabID unless a receiver is already
// attached. It reports whether recv was attached.
func (r *Router) RegisterIfAbsent(tabID string, recv Receiver) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receivers[tabID]; ok {
		return false
	}
	r.receivers[tabID] = recv
	return true
}

// Unregister detaches the receiver of tabID.
func (r *Router) Unregister(tabID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.receivers, tabID)
}

// Registered reports whether tabID has a receiver.
func (r *Router) Registered(tabID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.receivers[tabID]
	return ok
}

// Send delivers msg to tabID and waits for the response.
func (r *Router) Send(ctx context.Context, tabID string, msg Message) (Response, error) {
	r.mu.RLock()
	recv, ok := r.receivers[tabID]
	r.mu.RUnlock()
	if !ok {
		return Response{}, fmt.Errorf("send %s to tab %q: %w", msg.Type, tabID, ErrNoReceiver)
	}
	return recv.Handle(ctx, msg)
}
