// Package eventhub pushes committed complaint events to connected live clients.
package eventhub

import "civicdesk/backend/internal/models"

// Client is the interface for any live connection receiving complaint events.
// It abstracts the underlying transport so the hub can manage clients uniformly.
type Client interface {
	// GetPrincipal returns the authenticated caller the connection belongs to.
	// The hub only delivers events this principal may see.
	GetPrincipal() models.Principal

	// GetSendChannel returns the channel the hub writes events to.
	GetSendChannel() chan<- models.ComplaintEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outgoing channel.
	Close()
}
