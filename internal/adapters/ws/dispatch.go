package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

func (ctl *Controller) dispatch(id core.ConnID, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("bad json")
		return
	}

	switch env.Event {
	case protocol.EventJoinRoom:
		ctl.handleJoin(id, env.Data)
	case protocol.EventAdminKick:
		if target, ok := decodeTarget(env.Data); ok {
			ctl.Coord.Kick(id, target)
		}
	case protocol.EventAdminMute:
		if target, ok := decodeTarget(env.Data); ok {
			ctl.Coord.Mute(id, target)
		}
	case protocol.EventOffer:
		var p protocol.Offer
		if decode(id, env.Event, env.Data, &p) {
			ctl.Coord.RelayOffer(id, p)
		}
	case protocol.EventAnswer:
		var p protocol.Answer
		if decode(id, env.Event, env.Data, &p) {
			ctl.Coord.RelayAnswer(id, p)
		}
	case protocol.EventICECandidate:
		var p protocol.ICECandidate
		if decode(id, env.Event, env.Data, &p) {
			ctl.Coord.RelayCandidate(id, p)
		}
	case protocol.EventChatMessage:
		if !ctl.chatLimiter.Allow(id) {
			log.Warn().Str("module", "ws").Str("conn", string(id)).Msg("chat rate limit, dropped")
			return
		}
		var p protocol.ChatMessage
		if decode(id, env.Event, env.Data, &p) {
			ctl.Coord.Chat(id, p)
		}
	case protocol.EventRaiseHand:
		ctl.Coord.RaiseHand(id)
	case protocol.EventStartCall:
		ctl.Coord.StartCall(id)
	case protocol.EventEndCall:
		ctl.Coord.EndCall(id)
	case protocol.EventLockConf:
		ctl.Coord.LockRoom(id)
	case protocol.EventEndCallForAll:
		ctl.Coord.EndCallForAll(id)
	default:
		log.Warn().Str("module", "ws").Str("event", env.Event).Msg("unknown event")
	}
}

func (ctl *Controller) handleJoin(id core.ConnID, data []byte) {
	var p protocol.JoinRoom
	if !decode(id, protocol.EventJoinRoom, data, &p) {
		return
	}
	if p.RoomID == "" {
		log.Warn().Str("module", "ws").Str("conn", string(id)).Msg("join without roomId")
		return
	}
	ctl.Coord.Join(id, domain.RoomID(p.RoomID))
}

// decodeTarget accepts both {"targetId": "..."} and a bare string, which is
// how older clients send admin targets.
func decodeTarget(data []byte) (core.ConnID, bool) {
	var p protocol.AdminTarget
	if err := json.Unmarshal(data, &p); err == nil && p.TargetID != "" {
		return core.ConnID(p.TargetID), true
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil && raw != "" {
		return core.ConnID(raw), true
	}
	return "", false
}

func decode(id core.ConnID, event string, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Str("event", event).Msg("bad payload")
		return false
	}
	return true
}
