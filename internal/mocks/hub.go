package mocks

import "sync"

// MockBroadcaster records every push so tests can assert on routing.
type MockBroadcaster struct {
	mu   sync.Mutex
	Sent []BroadcastCall
}

type BroadcastCall struct {
	Room    string // "user:{id}" or "org:{id}"
	Event   string
	Payload any
}

func (b *MockBroadcaster) SendToUser(userID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = append(b.Sent, BroadcastCall{Room: "user:" + userID, Event: event, Payload: payload})
}

func (b *MockBroadcaster) SendToOrg(orgID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = append(b.Sent, BroadcastCall{Room: "org:" + orgID, Event: event, Payload: payload})
}

func (b *MockBroadcaster) Calls() []BroadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BroadcastCall(nil), b.Sent...)
}
