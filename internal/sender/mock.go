package sender

import (
	"context"
	"sync"
)

// MockSender records sent emails for tests. FailFor lists recipient
// addresses that should return an error.
type MockSender struct {
	mu      sync.Mutex
	Sent    []Email
	FailFor map[string]error
}

var _ Sender = (*MockSender)(nil)

func NewMockSender() *MockSender {
	return &MockSender{FailFor: map[string]error{}}
}

func (m *MockSender) Send(_ context.Context, email Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[email.To]; ok {
		return err
	}
	m.Sent = append(m.Sent, email)
	return nil
}

func (m *MockSender) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
