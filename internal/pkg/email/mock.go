package email

import "sync"

// MockSender records outbound mail for tests and dev environments without
// an SMTP server.
type MockSender struct {
	mu   sync.Mutex
	Sent []*Email
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(email *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, email)
	return nil
}

func (m *MockSender) SendPasswordReset(to, name, token string) error {
	return m.Send(&Email{
		To:      []string{to},
		Subject: "Password Reset",
		Body:    token,
	})
}

func (m *MockSender) SendWelcome(to, name string) error {
	return m.Send(&Email{
		To:      []string{to},
		Subject: "Welcome",
	})
}

func (m *MockSender) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
