package core

import "github.com/dkeye/Meet/internal/domain"

// memberSession implements MemberSession by pairing principal + transport.
type memberSession struct {
	principal *domain.Principal
	conn      SignalConnection
}

func NewMemberSession(principal *domain.Principal, conn SignalConnection) MemberSession {
	return &memberSession{principal: principal, conn: conn}
}

func (m *memberSession) Principal() *domain.Principal { return m.principal }
func (m *memberSession) Signal() SignalConnection     { return m.conn }
