// Package protocol defines the wire envelope and event payloads exchanged
// with conference clients. Offer/answer/candidate bodies are pion types but
// are never interpreted here; the server only forwards them.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/core"
)

// Inbound event names.
const (
	EventJoinRoom      = "join-room"
	EventAdminKick     = "admin-kick"
	EventAdminMute     = "admin-mute"
	EventOffer         = "offer"
	EventAnswer        = "answer"
	EventICECandidate  = "ice-candidate"
	EventChatMessage   = "chat-message"
	EventRaiseHand     = "raise-hand"
	EventStartCall     = "start-call"
	EventEndCall       = "end-call"
	EventLockConf      = "lock-conference"
	EventEndCallForAll = "end-call-for-all"
)

// Outbound event names.
const (
	EventRoomLocked        = "room-locked"
	EventRoomParticipants  = "room-participants"
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventKick              = "kick"
	EventMute              = "mute"
	EventUserRaisedHand    = "user-raised-hand"
	EventCallStarted       = "call-started"
	EventCallEnded         = "call-ended"
	EventConfLocked        = "conference-locked"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode builds a wire frame for event with the given payload.
// A nil payload produces an envelope without a data field.
func Encode(event string, payload any) (core.Frame, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", event, err)
		}
		env.Data = data
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", event, err)
	}
	return core.Frame(frame), nil
}

// --- inbound payloads ---

type JoinRoom struct {
	RoomID string `json:"roomId"`
}

type AdminTarget struct {
	TargetID string `json:"targetId"`
}

type Offer struct {
	RoomID string                    `json:"roomId"`
	Target string                    `json:"target"`
	Offer  webrtc.SessionDescription `json:"offer"`
}

type Answer struct {
	RoomID string                    `json:"roomId"`
	Target string                    `json:"target"`
	Answer webrtc.SessionDescription `json:"answer"`
}

type ICECandidate struct {
	RoomID    string                  `json:"roomId"`
	Target    string                  `json:"target"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type ChatMessage struct {
	RoomID   string  `json:"roomId"`
	Message  string  `json:"message"`
	FileData *string `json:"fileData,omitempty"`
	FileName string  `json:"fileName,omitempty"`
	FileType string  `json:"fileType,omitempty"`
}

type CallControl struct {
	RoomID string `json:"roomId"`
}

// --- outbound payloads ---

type ParticipantJoined struct {
	ID   core.ConnID       `json:"id"`
	Name string            `json:"name"`
	All  []core.MemberInfo `json:"all"`
}

type ParticipantLeft struct {
	ID  core.ConnID       `json:"id"`
	All []core.MemberInfo `json:"all"`
}

type ForwardedOffer struct {
	From  core.ConnID               `json:"from"`
	Offer webrtc.SessionDescription `json:"offer"`
}

type ForwardedAnswer struct {
	From   core.ConnID               `json:"from"`
	Answer webrtc.SessionDescription `json:"answer"`
}

type ForwardedCandidate struct {
	From      core.ConnID             `json:"from"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// ChatBroadcast carries the attachment data as a pointer: a message without
// one emits an explicit fileData null, which existing clients key on.
type ChatBroadcast struct {
	Sender   string  `json:"sender"`
	Message  string  `json:"message"`
	FileData *string `json:"fileData"`
	FileName string  `json:"fileName"`
	FileType string  `json:"fileType"`
}

type HandRaised struct {
	Name string `json:"name"`
}
