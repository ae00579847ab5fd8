package core

import "github.com/dkeye/Meet/internal/domain"

// Frame is a serialized signaling event ready for the wire.
type Frame []byte

// ConnID identifies one open connection for its lifetime.
type ConnID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds an authenticated principal to its transport endpoint.
// Principal is nil until the identity layer has attached one.
type MemberSession interface {
	Principal() *domain.Principal
	Signal() SignalConnection
}

// Member pairs a connection id with its room and display name.
// Held in the registry's side index for O(1) lookup from connection id.
type Member struct {
	Conn ConnID
	Room domain.RoomID
	Name string
}

// MemberInfo is a read-only view for the wire (no transport fields).
type MemberInfo struct {
	ID   ConnID `json:"id"`
	Name string `json:"name"`
}
