package core

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

// ErrRoomLocked rejects a join into a locked room by a name that was never
// admitted before the lock.
var ErrRoomLocked = errors.New("room locked")

// Gate decides whether a join attempt proceeds. Admission is tracked by
// display name, not connection id, so a participant who reconnects with a
// new connection is not re-challenged by a lock it already passed.
//
// Display names are client-supplied and not bound to the authenticated
// identity: a client could spoof an admitted name to slip past a lock. The
// real identity check happens upstream at connect time; this layer is a
// known-weak convenience boundary, kept as-is on purpose.
type Gate struct {
	mu      sync.RWMutex
	locked  map[domain.RoomID]struct{}
	allowed map[domain.RoomID]map[string]struct{}
}

func NewGate() *Gate {
	return &Gate{
		locked:  make(map[domain.RoomID]struct{}),
		allowed: make(map[domain.RoomID]map[string]struct{}),
	}
}

// CheckJoin admits unless the room is locked and the caller is neither a
// host nor a previously admitted name.
func (g *Gate) CheckJoin(room domain.RoomID, name string, isHost bool) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, locked := g.locked[room]; !locked {
		return nil
	}
	if isHost {
		return nil
	}
	if _, ok := g.allowed[room][name]; ok {
		return nil
	}
	return ErrRoomLocked
}

// RecordAdmission adds name to the room's allow-set. Called after every
// admitted join, locked or not, so a name admitted before a lock engages
// is grandfathered in once it does. The allow-set only grows; departures
// never prune it.
func (g *Gate) RecordAdmission(room domain.RoomID, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.allowed[room]
	if !ok {
		set = make(map[string]struct{})
		g.allowed[room] = set
	}
	set[name] = struct{}{}
}

// Lock flags the room as locked. Idempotent.
func (g *Gate) Lock(room domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked[room] = struct{}{}
	log.Info().Str("module", "core.gate").Str("room", string(room)).Msg("room locked")
}

// Locked reports the lock flag.
func (g *Gate) Locked(room domain.RoomID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.locked[room]
	return ok
}
