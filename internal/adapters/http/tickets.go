package http

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadTicket = errors.New("invalid ticket")

// TicketIssuer mints short-lived signed tickets so browser clients can
// authenticate the WebSocket without a cross-origin cookie.
type TicketIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTicketIssuer(secret string, ttl time.Duration) *TicketIssuer {
	return &TicketIssuer{secret: []byte(secret), ttl: ttl}
}

func (t *TicketIssuer) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid": userID,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TicketIssuer) Verify(ticket string) (uint, error) {
	token, err := jwt.Parse(ticket, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadTicket
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrBadTicket
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrBadTicket
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return 0, ErrBadTicket
	}
	return uint(uid), nil
}
