package domain

import "time"

// ConnectionKey identifies a directed friend edge. It is comparable and can be
// used directly as a map key.
type ConnectionKey struct {
	UserID       string
	ConnectionID string
}

// Connection is a directed edge from User to Connection. A connection from A
// to B does not imply one from B to A.
type Connection struct {
	User       User
	Connection User
	CreatedAt  time.Time
}

// Key returns the composite identity of the edge.
func (c Connection) Key() ConnectionKey {
	return ConnectionKey{UserID: c.User.ID, ConnectionID: c.Connection.ID}
}
