package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

// roomState keeps the ordered member list of one room. Insertion order is
// join order and drives presence list ordering on the wire.
type roomState struct {
	order []ConnID
}

// Registry is the process-wide room membership store. It owns both the
// per-room ordered member lists and the side index from connection id back
// to room and display name; a single lock keeps the two views consistent
// under concurrent joins, kicks and disconnects.
//
// Rooms are created implicitly on first join and never destroyed: an empty
// room stays dormant for the process lifetime.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]*roomState
	members map[ConnID]Member
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[domain.RoomID]*roomState),
		members: make(map[ConnID]Member),
	}
}

// Join records id under name in room and returns the refreshed member list.
// A join by a connection whose display name is already present in the room
// is suppressed: no list entry, no member entry, no error — the current
// list is returned with added=false. Re-joining one's own room is the same
// no-op.
func (r *Registry) Join(room domain.RoomID, id ConnID, name string) (members []MemberInfo, added bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[room]
	if !ok {
		state = &roomState{}
		r.rooms[room] = state
	}

	duplicate := false
	for _, existing := range state.order {
		if r.members[existing].Name == name {
			duplicate = true
			break
		}
	}

	if !duplicate {
		state.order = append(state.order, id)
		r.members[id] = Member{Conn: id, Room: room, Name: name}
		log.Info().Str("module", "core.registry").Str("conn", string(id)).Str("room", string(room)).Str("name", name).Msg("member joined")
	} else {
		log.Debug().Str("module", "core.registry").Str("conn", string(id)).Str("room", string(room)).Str("name", name).Msg("duplicate join suppressed")
	}

	return r.snapshot(state), !duplicate
}

// Leave removes id from whichever room it is in and returns the remaining
// member list. A second Leave for an already-removed connection id is a
// no-op reported via ok=false; callers ignore it silently.
func (r *Registry) Leave(id ConnID) (room domain.RoomID, remaining []MemberInfo, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return "", nil, false
	}
	delete(r.members, id)

	state := r.rooms[m.Room]
	for i, existing := range state.order {
		if existing == id {
			state.order = append(state.order[:i], state.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Str("room", string(m.Room)).Msg("member left")
	return m.Room, r.snapshot(state), true
}

// Lookup resolves a connection id to its membership, if any.
func (r *Registry) Lookup(id ConnID) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	return m, ok
}

// Members returns the current member list of room in join order.
func (r *Registry) Members(room domain.RoomID) []MemberInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.rooms[room]
	if !ok {
		return nil
	}
	return r.snapshot(state)
}

// snapshot builds the wire view of a room. Caller holds r.mu.
func (r *Registry) snapshot(state *roomState) []MemberInfo {
	out := make([]MemberInfo, 0, len(state.order))
	for _, id := range state.order {
		out = append(out, MemberInfo{ID: id, Name: r.members[id].Name})
	}
	return out
}
