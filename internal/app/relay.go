package app

import "github.com/dkeye/Meet/internal/core"

// RelayPolicy decides whether a signaling message may be forwarded from one
// connection to another. The default is permissive: any connected client can
// target any connection id it knows, which matches how clients exchange ids
// via the presence list today. Swap in SameRoomRelay to restrict forwarding
// without touching the coordinator.
type RelayPolicy interface {
	Allow(from, target core.ConnID) bool
}

type PermissiveRelay struct{}

func (PermissiveRelay) Allow(from, target core.ConnID) bool { return true }

// SameRoomRelay only forwards between members of the same room.
type SameRoomRelay struct {
	Registry *core.Registry
}

func (p SameRoomRelay) Allow(from, target core.ConnID) bool {
	a, ok := p.Registry.Lookup(from)
	if !ok {
		return false
	}
	b, ok := p.Registry.Lookup(target)
	if !ok {
		return false
	}
	return a.Room == b.Room
}
