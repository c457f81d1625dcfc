package eventhub

import (
	"civicdesk/backend/internal/metrics"
	"civicdesk/backend/internal/models"
	"context"
	"errors"
	"log"
	"sync"
)

const broadcastBufferSize = 256

// ErrHubBusy is returned by Notify when the broadcast buffer is full.
var ErrHubBusy = errors.New("event hub broadcast buffer is full")

// ManagerService owns the set of live clients. Register, unregister and
// broadcast requests are serialized through its run loop.
type ManagerService struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	BroadcastCh  chan models.ComplaintEvent

	mu      sync.RWMutex
	clients map[Client]struct{}
	done    chan struct{}
}

func NewManagerService() *ManagerService {
	return &ManagerService{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		BroadcastCh:  make(chan models.ComplaintEvent, broadcastBufferSize),
		clients:      make(map[Client]struct{}),
		done:         make(chan struct{}),
	}
}

// Run processes hub requests until ctx is cancelled, then closes every client.
func (m *ManagerService) Run(ctx context.Context) {
	log.Println("INFO: Event hub started.")
	defer func() {
		close(m.done)
		m.closeAll()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: Event hub stopped.")
			return

		case client := <-m.RegisterCh:
			m.mu.Lock()
			m.clients[client] = struct{}{}
			m.mu.Unlock()
			metrics.WebSocketClients.Inc()
			p := client.GetPrincipal()
			log.Printf("INFO: Live client registered (%s %s).", p.Role, p.UserID)

		case client := <-m.UnregisterCh:
			m.remove(client)

		case ev := <-m.BroadcastCh:
			m.deliver(ev)
		}
	}
}

// Register hands client to the run loop. It reports false, without blocking,
// once the hub has stopped.
func (m *ManagerService) Register(client Client) bool {
	select {
	case m.RegisterCh <- client:
		return true
	case <-m.done:
		return false
	}
}

// Unregister asks the run loop to drop client. Safe to call more than once
// and after the hub stopped.
func (m *ManagerService) Unregister(client Client) {
	select {
	case m.UnregisterCh <- client:
	case <-m.done:
	}
}

// Notify queues an event for delivery, which lets the hub act as the
// complaint notifier on single-instance deployments.
func (m *ManagerService) Notify(ctx context.Context, ev models.ComplaintEvent) error {
	select {
	case m.BroadcastCh <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrHubBusy
	}
}

// ClientCount returns the number of registered clients.
func (m *ManagerService) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *ManagerService) deliver(ev models.ComplaintEvent) {
	m.mu.RLock()
	var slow []Client
	for client := range m.clients {
		if !client.GetPrincipal().CanSeeEvent(ev) {
			continue
		}
		select {
		case client.GetSendChannel() <- ev:
		default:
			slow = append(slow, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range slow {
		log.Printf("WARNING: Dropping slow live client %s.", client.GetPrincipal().UserID)
		m.remove(client)
	}
}

func (m *ManagerService) remove(client Client) {
	m.mu.Lock()
	_, ok := m.clients[client]
	delete(m.clients, client)
	m.mu.Unlock()

	if ok {
		client.Close()
		metrics.WebSocketClients.Dec()
	}
}

func (m *ManagerService) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for client := range m.clients {
		client.Close()
		metrics.WebSocketClients.Dec()
	}
	m.clients = make(map[Client]struct{})
}
