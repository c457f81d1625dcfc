package eventhub_test

import (
	"civicdesk/backend/internal/models"
	"sync"
)

type MockClient struct {
	principal   models.Principal
	RecvChannel chan models.ComplaintEvent

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID string, role models.Role, buffer int) *MockClient {
	return &MockClient{
		principal:   models.Principal{UserID: userID, Role: role},
		RecvChannel: make(chan models.ComplaintEvent, buffer),
	}
}

func (c *MockClient) GetPrincipal() models.Principal {
	return c.principal
}

func (c *MockClient) GetSendChannel() chan<- models.ComplaintEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
