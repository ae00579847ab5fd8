package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

// fakeConn records every frame instead of writing to a socket.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// events decodes all received envelopes with the given event name.
func (f *fakeConn) events(t *testing.T, name string) []json.RawMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []json.RawMessage
	for _, fr := range f.frames {
		var env protocol.Envelope
		require.NoError(t, json.Unmarshal(fr, &env))
		if env.Event == name {
			out = append(out, env.Data)
		}
	}
	return out
}

func (f *fakeConn) total(t *testing.T) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newTestCoordinator() *Coordinator {
	sessions := NewSessions()
	registry := core.NewRegistry()
	return &Coordinator{
		Sessions: sessions,
		Registry: registry,
		Gate:     core.NewGate(),
		Cast:     &Broadcaster{Sessions: sessions, Registry: registry},
		Relay:    PermissiveRelay{},
	}
}

func host(name string) *domain.Principal {
	return &domain.Principal{ID: 1, Email: name + "@example.com", Name: name, Role: domain.RoleHost}
}

func participant(name string) *domain.Principal {
	return &domain.Principal{ID: 2, Email: name + "@example.com", Name: name, Role: domain.RoleParticipant}
}

func connect(c *Coordinator, id core.ConnID, p *domain.Principal) *fakeConn {
	conn := &fakeConn{}
	c.Connect(id, core.NewMemberSession(p, conn), func() {})
	return conn
}

func lastRoster(t *testing.T, raw []json.RawMessage) []core.MemberInfo {
	t.Helper()
	require.NotEmpty(t, raw)
	var roster []core.MemberInfo
	require.NoError(t, json.Unmarshal(raw[len(raw)-1], &roster))
	return roster
}

func TestJoinBroadcastsRosterInJoinOrder(t *testing.T) {
	c := newTestCoordinator()

	h := connect(c, "H", host("helen"))
	c.Join("H", "42")

	p := connect(c, "P", participant("pete"))
	c.Join("P", "42")

	roster := lastRoster(t, h.events(t, protocol.EventRoomParticipants))
	require.Len(t, roster, 2)
	assert.Equal(t, core.ConnID("H"), roster[0].ID)
	assert.Equal(t, core.ConnID("P"), roster[1].ID)

	joined := p.events(t, protocol.EventParticipantJoined)
	require.Len(t, joined, 1)
	var ev protocol.ParticipantJoined
	require.NoError(t, json.Unmarshal(joined[0], &ev))
	assert.Equal(t, core.ConnID("P"), ev.ID)
	assert.Equal(t, "pete", ev.Name)
	assert.Len(t, ev.All, 2)
}

func TestUnauthenticatedJoinClosesConnection(t *testing.T) {
	c := newTestCoordinator()

	conn := connect(c, "X", nil)
	c.Join("X", "42")

	assert.True(t, conn.isClosed())
	assert.Empty(t, c.Registry.Members("42"))
}

func TestDuplicateNameJoinIsSilentNoOp(t *testing.T) {
	c := newTestCoordinator()

	a := connect(c, "A", participant("alice"))
	c.Join("A", "42")

	b := connect(c, "B", participant("alice"))
	c.Join("B", "42")

	// Membership unchanged.
	members := c.Registry.Members("42")
	require.Len(t, members, 1)
	assert.Equal(t, core.ConnID("A"), members[0].ID)

	// The duplicate still learns the roster, but nobody is notified of a join.
	roster := lastRoster(t, b.events(t, protocol.EventRoomParticipants))
	assert.Len(t, roster, 1)
	assert.Empty(t, b.events(t, protocol.EventParticipantJoined))
	assert.Len(t, a.events(t, protocol.EventParticipantJoined), 1) // only its own
}

func TestLockedRoomScenario(t *testing.T) {
	c := newTestCoordinator()

	// Host H joins room "42".
	h := connect(c, "H", host("helen"))
	c.Join("H", "42")
	assert.Len(t, lastRoster(t, h.events(t, protocol.EventRoomParticipants)), 1)

	// Participant P joins.
	p := connect(c, "P", participant("P"))
	c.Join("P", "42")
	for _, conn := range []*fakeConn{h, p} {
		joined := conn.events(t, protocol.EventParticipantJoined)
		require.NotEmpty(t, joined)
		var ev protocol.ParticipantJoined
		require.NoError(t, json.Unmarshal(joined[len(joined)-1], &ev))
		assert.Equal(t, core.ConnID("P"), ev.ID)
		assert.Equal(t, "P", ev.Name)
		assert.Len(t, ev.All, 2)
	}

	// H locks the conference; both members are notified.
	c.LockRoom("H")
	assert.Len(t, h.events(t, protocol.EventConfLocked), 1)
	assert.Len(t, p.events(t, protocol.EventConfLocked), 1)
	assert.True(t, c.Gate.Locked("42"))

	// New participant Q is rejected and only Q hears about it.
	q := connect(c, "Q", participant("quinn"))
	c.Join("Q", "42")
	assert.Len(t, q.events(t, protocol.EventRoomLocked), 1)
	assert.Empty(t, h.events(t, protocol.EventRoomLocked))
	require.Len(t, c.Registry.Members("42"), 2)

	// P disconnects; H gets participant-left with the shrunken roster.
	c.Disconnect("P")
	left := h.events(t, protocol.EventParticipantLeft)
	require.Len(t, left, 1)
	var ev protocol.ParticipantLeft
	require.NoError(t, json.Unmarshal(left[0], &ev))
	assert.Equal(t, core.ConnID("P"), ev.ID)
	require.Len(t, ev.All, 1)
	assert.Equal(t, core.ConnID("H"), ev.All[0].ID)
}

func TestLockSurvivesReconnection(t *testing.T) {
	c := newTestCoordinator()

	connect(c, "H", host("helen"))
	c.Join("H", "42")

	connect(c, "N1", participant("nick"))
	c.Join("N1", "42")

	c.LockRoom("H")

	// nick leaves and returns with a new connection id and must not be
	// re-challenged by the lock.
	c.Disconnect("N1")
	n2 := connect(c, "N2", participant("nick"))
	c.Join("N2", "42")

	assert.Empty(t, n2.events(t, protocol.EventRoomLocked))
	require.Len(t, c.Registry.Members("42"), 2)
}

func TestKickDeliveredOnlyToTarget(t *testing.T) {
	c := newTestCoordinator()

	connect(c, "H", host("helen"))
	c.Join("H", "42")
	x := connect(c, "X", participant("xavier"))
	c.Join("X", "42")
	y := connect(c, "Y", participant("yvonne"))
	c.Join("Y", "42")

	c.Kick("H", "X")
	assert.Len(t, x.events(t, protocol.EventKick), 1)
	assert.Empty(t, y.events(t, protocol.EventKick))

	// Non-host kick delivers nothing to anyone.
	before := x.total(t) + y.total(t)
	c.Kick("Y", "X")
	assert.Equal(t, before, x.total(t)+y.total(t))
}

func TestMuteDeliveredOnlyToTarget(t *testing.T) {
	c := newTestCoordinator()

	connect(c, "H", host("helen"))
	c.Join("H", "42")
	x := connect(c, "X", participant("xavier"))
	c.Join("X", "42")

	c.Mute("H", "X")
	assert.Len(t, x.events(t, protocol.EventMute), 1)

	// Non-host attempt is dropped silently.
	c.Mute("X", "H")
	assert.Len(t, x.events(t, protocol.EventMute), 1)
}

func TestCallControlsAreHostGated(t *testing.T) {
	c := newTestCoordinator()

	connect(c, "H", host("helen"))
	c.Join("H", "42")
	p := connect(c, "P", participant("pete"))
	c.Join("P", "42")

	c.StartCall("H")
	assert.Len(t, p.events(t, protocol.EventCallStarted), 1)

	c.EndCall("P") // not a host: dropped
	assert.Empty(t, p.events(t, protocol.EventCallEnded))

	c.EndCallForAll("H")
	assert.Len(t, p.events(t, protocol.EventCallEnded), 1)
}

func TestDisconnectWithoutJoinIsSilent(t *testing.T) {
	c := newTestCoordinator()

	connect(c, "H", host("helen"))
	c.Join("H", "42")

	connect(c, "L", participant("loner"))
	before := c.Registry.Members("42")

	c.Disconnect("L")
	assert.Equal(t, before, c.Registry.Members("42"))
}

func TestJoinNewRoomDepartsOldOne(t *testing.T) {
	c := newTestCoordinator()

	a := connect(c, "A", participant("alice"))
	c.Join("A", "1")
	connect(c, "B", participant("bob"))
	c.Join("B", "1")

	c.Join("B", "2")

	left := a.events(t, protocol.EventParticipantLeft)
	require.Len(t, left, 1)
	assert.Len(t, c.Registry.Members("1"), 1)
	assert.Len(t, c.Registry.Members("2"), 1)
}

func TestRejectedJoinKeepsOldRoomMembership(t *testing.T) {
	c := newTestCoordinator()

	a := connect(c, "A", participant("alice"))
	c.Join("A", "1")
	c.Gate.Lock("2")

	c.Join("A", "2")

	// Only the rejection notice; membership in room "1" is untouched and
	// nobody saw a departure.
	assert.Len(t, a.events(t, protocol.EventRoomLocked), 1)
	members := c.Registry.Members("1")
	require.Len(t, members, 1)
	assert.Equal(t, core.ConnID("A"), members[0].ID)
	assert.Empty(t, c.Registry.Members("2"))
	assert.Empty(t, a.events(t, protocol.EventParticipantLeft))
}

func TestDisconnectCancelsPumpContext(t *testing.T) {
	c := newTestCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	conn := &fakeConn{}
	c.Connect("A", core.NewMemberSession(participant("alice"), conn), cancel)
	c.Join("A", "1")

	c.Disconnect("A")

	select {
	case <-ctx.Done():
	default:
		t.Fatal("pump context still alive after disconnect")
	}
}

func TestRelayIsDirectedAndCarriesSender(t *testing.T) {
	c := newTestCoordinator()

	connect(c, "A", participant("alice"))
	c.Join("A", "1")
	b := connect(c, "B", participant("bob"))
	c.Join("B", "2") // different room: permissive policy still forwards

	sdp := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\n"}
	c.RelayOffer("A", protocol.Offer{Target: "B", Offer: sdp})
	offers := b.events(t, protocol.EventOffer)
	require.Len(t, offers, 1)
	var fwd protocol.ForwardedOffer
	require.NoError(t, json.Unmarshal(offers[0], &fwd))
	assert.Equal(t, core.ConnID("A"), fwd.From)
	assert.Equal(t, "v=0\r\n", fwd.Offer.SDP)

	c.RelayCandidate("A", protocol.ICECandidate{Target: "B"})
	assert.Len(t, b.events(t, protocol.EventICECandidate), 1)
}

func TestSameRoomRelayPolicy(t *testing.T) {
	c := newTestCoordinator()
	c.Relay = SameRoomRelay{Registry: c.Registry}

	connect(c, "A", participant("alice"))
	c.Join("A", "1")
	b := connect(c, "B", participant("bob"))
	c.Join("B", "2")

	c.RelayAnswer("A", protocol.Answer{Target: "B"})
	assert.Empty(t, b.events(t, protocol.EventAnswer))

	c.Join("B", "1")
	c.RelayAnswer("A", protocol.Answer{Target: "B"})
	assert.Len(t, b.events(t, protocol.EventAnswer), 1)
}

func TestChatIsNeverEchoedToSender(t *testing.T) {
	c := newTestCoordinator()

	a := connect(c, "A", &domain.Principal{ID: 7, Email: "carol@example.com", Role: domain.RoleParticipant})
	c.Join("A", "1")
	b := connect(c, "B", participant("bob"))
	c.Join("B", "1")

	c.Chat("A", protocol.ChatMessage{Message: "hi", FileName: "notes.txt"})

	assert.Empty(t, a.events(t, protocol.EventChatMessage))
	msgs := b.events(t, protocol.EventChatMessage)
	require.Len(t, msgs, 1)
	var msg protocol.ChatBroadcast
	require.NoError(t, json.Unmarshal(msgs[0], &msg))
	// No name set: sender label falls back to the email local part.
	assert.Equal(t, "carol", msg.Sender)
	assert.Equal(t, "hi", msg.Message)
	assert.Equal(t, "notes.txt", msg.FileName)
	// No attachment rides as an explicit null, not "".
	assert.Nil(t, msg.FileData)
	assert.Contains(t, string(msgs[0]), `"fileData":null`)

	data := "aGVsbG8="
	c.Chat("A", protocol.ChatMessage{Message: "file", FileData: &data, FileName: "a.bin"})
	msgs = b.events(t, protocol.EventChatMessage)
	require.Len(t, msgs, 2)
	require.NoError(t, json.Unmarshal(msgs[1], &msg))
	require.NotNil(t, msg.FileData)
	assert.Equal(t, "aGVsbG8=", *msg.FileData)
}

func TestRaiseHandBroadcastsName(t *testing.T) {
	c := newTestCoordinator()

	a := connect(c, "A", participant("alice"))
	c.Join("A", "1")
	b := connect(c, "B", participant("bob"))
	c.Join("B", "1")

	c.RaiseHand("A")

	for _, conn := range []*fakeConn{a, b} {
		raised := conn.events(t, protocol.EventUserRaisedHand)
		require.Len(t, raised, 1)
		var ev protocol.HandRaised
		require.NoError(t, json.Unmarshal(raised[0], &ev))
		assert.Equal(t, "alice", ev.Name)
	}
}

// recordingStore captures auto-join records; failure mode is switchable.
type recordingStore struct {
	mu    sync.Mutex
	calls []string
	fail  bool
	done  chan struct{}
}

func (s *recordingStore) AutoJoin(ctx context.Context, conferenceID, email, name string) error {
	s.mu.Lock()
	s.calls = append(s.calls, conferenceID+"/"+email+"/"+name)
	s.mu.Unlock()
	close(s.done)
	if s.fail {
		return assert.AnError
	}
	return nil
}

func TestAutoJoinRecordIsBestEffort(t *testing.T) {
	c := newTestCoordinator()
	store := &recordingStore{fail: true, done: make(chan struct{})}
	c.Store = store

	connect(c, "A", participant("alice"))
	c.Join("A", "42")
	<-store.done

	// The failed upsert never rolls back the in-memory join.
	require.Len(t, c.Registry.Members("42"), 1)
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.calls, 1)
	assert.Equal(t, "42/alice@example.com/alice", store.calls[0])
}
