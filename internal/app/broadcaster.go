package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

// Broadcaster fans membership and control events out to room members and
// delivers directed events to single connections. Sends are best-effort:
// a backpressured or closed connection drops the frame with a log line.
type Broadcaster struct {
	Sessions *Sessions
	Registry *core.Registry
}

func (b *Broadcaster) ToRoom(room domain.RoomID, event string, payload any) {
	b.toRoom(room, "", event, payload)
}

// ToRoomExcept skips one member, e.g. the chat sender.
func (b *Broadcaster) ToRoomExcept(room domain.RoomID, except core.ConnID, event string, payload any) {
	b.toRoom(room, except, event, payload)
}

func (b *Broadcaster) toRoom(room domain.RoomID, except core.ConnID, event string, payload any) {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("event", event).Msg("encode")
		return
	}
	for _, m := range b.Registry.Members(room) {
		if m.ID == except {
			continue
		}
		b.send(m.ID, event, frame)
	}
}

func (b *Broadcaster) ToConn(id core.ConnID, event string, payload any) {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("event", event).Msg("encode")
		return
	}
	b.send(id, event, frame)
}

func (b *Broadcaster) send(id core.ConnID, event string, frame core.Frame) {
	sess, ok := b.Sessions.Get(id)
	if !ok {
		log.Debug().Str("module", "app.broadcast").Str("conn", string(id)).Str("event", event).Msg("no session, frame dropped")
		return
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.broadcast").Str("conn", string(id)).Str("event", event).Msg("send failed, frame dropped")
	}
}
