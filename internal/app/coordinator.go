package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

const autoJoinTimeout = 5 * time.Second

// JoinRecorder persists "participant auto-joined" records. Best-effort:
// the coordinator fires it in the background and only logs failures.
type JoinRecorder interface {
	AutoJoin(ctx context.Context, conferenceID, email, name string) error
}

// Coordinator orchestrates the session lifecycle: it owns the room registry
// and the access gate, verifies host authority for privileged actions, and
// drives the broadcaster and the signaling relay.
//
// Unauthorized privileged actions are dropped silently (logged server-side
// only); the caller learns nothing about which actions exist.
type Coordinator struct {
	Sessions *Sessions
	Registry *core.Registry
	Gate     *core.Gate
	Cast     *Broadcaster
	Relay    RelayPolicy
	Store    JoinRecorder // optional
}

// Connect registers a freshly upgraded connection.
func (c *Coordinator) Connect(id core.ConnID, sess core.MemberSession, cancel context.CancelFunc) {
	c.Sessions.Bind(id, sess, cancel)
}

// Join runs the join protocol: authentication check, lock check, admission
// record, registry mutation, fan-out. An unauthenticated connection is
// forcibly closed rather than left in limbo.
func (c *Coordinator) Join(id core.ConnID, room domain.RoomID) {
	sess, ok := c.Sessions.Get(id)
	if !ok {
		return
	}
	p := sess.Principal()
	if p == nil {
		log.Warn().Str("module", "app.coordinator").Str("conn", string(id)).Msg("unauthenticated join, closing connection")
		c.Sessions.ForceClose(id)
		return
	}
	name := p.DisplayName()

	if err := c.Gate.CheckJoin(room, name, p.IsHost()); err != nil {
		if errors.Is(err, core.ErrRoomLocked) {
			log.Info().Str("module", "app.coordinator").Str("conn", string(id)).Str("room", string(room)).Str("name", name).Msg("join rejected, room locked")
			c.Cast.ToConn(id, protocol.EventRoomLocked, nil)
		}
		return
	}

	// Joining a new room departs the old one only after the new room has
	// admitted the caller; a rejected join leaves membership untouched. A
	// connection id is in at most one member list at a time.
	if m, ok := c.Registry.Lookup(id); ok && m.Room != room {
		c.depart(id)
	}

	c.Gate.RecordAdmission(room, name)

	members, added := c.Registry.Join(room, id, name)

	if c.Store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), autoJoinTimeout)
			defer cancel()
			if err := c.Store.AutoJoin(ctx, string(room), p.Email, name); err != nil {
				log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Str("email", p.Email).Msg("auto-join record failed")
			}
		}()
	}

	if !added {
		// Duplicate-name join: nothing changed, but the joiner still gets
		// the current roster.
		c.Cast.ToConn(id, protocol.EventRoomParticipants, members)
		return
	}
	c.Cast.ToRoom(room, protocol.EventRoomParticipants, members)
	c.Cast.ToRoom(room, protocol.EventParticipantJoined, protocol.ParticipantJoined{ID: id, Name: name, All: members})
}

// Disconnect removes the member and broadcasts departure. A connection that
// never joined a room produces no broadcast and no error.
func (c *Coordinator) Disconnect(id core.ConnID) {
	c.depart(id)
	c.Sessions.Unbind(id)
}

func (c *Coordinator) depart(id core.ConnID) {
	room, remaining, ok := c.Registry.Leave(id)
	if !ok {
		return
	}
	c.Cast.ToRoom(room, protocol.EventParticipantLeft, protocol.ParticipantLeft{ID: id, All: remaining})
}

// LockRoom engages the lock on the caller's room and notifies it.
func (c *Coordinator) LockRoom(id core.ConnID) {
	if !c.requireHost(id, "lock") {
		return
	}
	m, ok := c.Registry.Lookup(id)
	if !ok {
		return
	}
	c.Gate.Lock(m.Room)
	c.Cast.ToRoom(m.Room, protocol.EventConfLocked, nil)
}

// Kick delivers a kick directive to the target connection only.
func (c *Coordinator) Kick(id core.ConnID, target core.ConnID) {
	if !c.requireHost(id, "kick") {
		return
	}
	log.Info().Str("module", "app.coordinator").Str("conn", string(id)).Str("target", string(target)).Msg("kick")
	c.Cast.ToConn(target, protocol.EventKick, nil)
}

// Mute delivers a mute directive to the target connection only.
func (c *Coordinator) Mute(id core.ConnID, target core.ConnID) {
	if !c.requireHost(id, "mute") {
		return
	}
	log.Info().Str("module", "app.coordinator").Str("conn", string(id)).Str("target", string(target)).Msg("mute")
	c.Cast.ToConn(target, protocol.EventMute, nil)
}

// StartCall broadcasts a call-started notice to the caller's room.
func (c *Coordinator) StartCall(id core.ConnID) {
	c.callNotice(id, "start-call", protocol.EventCallStarted)
}

// EndCall broadcasts a call-ended notice to the caller's room.
func (c *Coordinator) EndCall(id core.ConnID) {
	c.callNotice(id, "end-call", protocol.EventCallEnded)
}

// EndCallForAll broadcasts the same call-ended notice; clients treat it as
// a room-wide hangup.
func (c *Coordinator) EndCallForAll(id core.ConnID) {
	c.callNotice(id, "end-call-for-all", protocol.EventCallEnded)
}

func (c *Coordinator) callNotice(id core.ConnID, action, event string) {
	if !c.requireHost(id, action) {
		return
	}
	m, ok := c.Registry.Lookup(id)
	if !ok {
		return
	}
	c.Cast.ToRoom(m.Room, event, nil)
}

// RelayOffer forwards an SDP offer to the target connection.
func (c *Coordinator) RelayOffer(id core.ConnID, p protocol.Offer) {
	c.relay(id, core.ConnID(p.Target), protocol.EventOffer, protocol.ForwardedOffer{From: id, Offer: p.Offer})
}

// RelayAnswer forwards an SDP answer to the target connection.
func (c *Coordinator) RelayAnswer(id core.ConnID, p protocol.Answer) {
	c.relay(id, core.ConnID(p.Target), protocol.EventAnswer, protocol.ForwardedAnswer{From: id, Answer: p.Answer})
}

// RelayCandidate forwards an ICE candidate to the target connection.
func (c *Coordinator) RelayCandidate(id core.ConnID, p protocol.ICECandidate) {
	c.relay(id, core.ConnID(p.Target), protocol.EventICECandidate, protocol.ForwardedCandidate{From: id, Candidate: p.Candidate})
}

func (c *Coordinator) relay(from, target core.ConnID, event string, payload any) {
	if !c.Relay.Allow(from, target) {
		log.Debug().Str("module", "app.coordinator").Str("from", string(from)).Str("target", string(target)).Str("event", event).Msg("relay denied by policy")
		return
	}
	c.Cast.ToConn(target, event, payload)
}

// Chat broadcasts a chat message to the sender's room mates; never echoed
// back to the sender.
func (c *Coordinator) Chat(id core.ConnID, p protocol.ChatMessage) {
	sess, ok := c.Sessions.Get(id)
	if !ok || sess.Principal() == nil {
		return
	}
	m, ok := c.Registry.Lookup(id)
	if !ok {
		return
	}
	c.Cast.ToRoomExcept(m.Room, id, protocol.EventChatMessage, protocol.ChatBroadcast{
		Sender:   sess.Principal().ChatName(),
		Message:  p.Message,
		FileData: p.FileData,
		FileName: p.FileName,
		FileType: p.FileType,
	})
}

// RaiseHand broadcasts the raiser's display name to its room.
func (c *Coordinator) RaiseHand(id core.ConnID) {
	m, ok := c.Registry.Lookup(id)
	if !ok {
		return
	}
	c.Cast.ToRoom(m.Room, protocol.EventUserRaisedHand, protocol.HandRaised{Name: m.Name})
}

// requireHost verifies the caller's principal has the host role. Failures
// are dropped silently, logged server-side only.
func (c *Coordinator) requireHost(id core.ConnID, action string) bool {
	sess, ok := c.Sessions.Get(id)
	if !ok {
		return false
	}
	p := sess.Principal()
	if p == nil || !p.IsHost() {
		log.Warn().Str("module", "app.coordinator").Str("conn", string(id)).Str("action", action).Msg("unauthorized, dropped")
		return false
	}
	return true
}
