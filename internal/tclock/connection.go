package tclock

import (
	"context"
	"sync"
)

// Connection tracks whether the remote service is reachable and the
// last connection error seen. It is mutated by every gateway call
// attempt and by explicit reconnects. Not persisted.
type Connection struct {
	mu      sync.Mutex
	online  bool
	lastErr string

	prober Prober
	logger Logger
}

// NewConnection creates a Connection starting in the offline state.
// The first successful probe or punch flips it online.
func NewConnection(prober Prober, logger Logger) *Connection {
	return &Connection{prober: prober, logger: logger}
}

func (c *Connection) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// LastError returns the last connection error message, or "" when none.
func (c *Connection) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SetOnline marks the connection healthy and clears the last error.
func (c *Connection) SetOnline() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = true
	c.lastErr = ""
}

// SetOffline marks the connection down with a descriptive error.
func (c *Connection) SetOffline(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = false
	c.lastErr = msg
}

// TryReconnect probes the remote services and flips the state online
// only if the probe succeeds. Returns the resulting online state.
func (c *Connection) TryReconnect(ctx context.Context) bool {
	c.logger.Info("attempting to reconnect to remote services")

	if err := c.prober.Probe(ctx); err != nil {
		c.logger.Warn("reconnect probe failed", "error", err)
		c.SetOffline(err.Error())
		return false
	}

	c.logger.Info("reconnected to remote services")
	c.SetOnline()
	return true
}
