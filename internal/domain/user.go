// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxNameLen  = 64
	MaxEmailLen = 254
)

var (
	ErrNameTooLong  = errors.New("name too long")
	ErrEmailEmpty   = errors.New("email empty")
	ErrEmailTooLong = errors.New("email too long")
	ErrUnknownRole  = errors.New("unknown role")
)

type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHost:
		return RoleHost, nil
	case RoleParticipant:
		return RoleParticipant, nil
	}
	return "", ErrUnknownRole
}

type UserID uint

// Principal is an authenticated identity attached to a connection
// by the identity layer. Role is authoritative.
type Principal struct {
	ID    UserID `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func NewPrincipal(id UserID, email, name string, role Role) (*Principal, error) {
	if email == "" {
		return nil, ErrEmailEmpty
	}
	if len(email) > MaxEmailLen {
		return nil, ErrEmailTooLong
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Principal{ID: id, Email: email, Name: name, Role: role}, nil
}

func (p *Principal) IsHost() bool { return p.Role == RoleHost }

// DisplayName is the name shown in member lists.
func (p *Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return "Anonymous"
}

// ChatName is the sender label for chat messages. Falls back to the
// local part of the email when the user has no name set.
func (p *Principal) ChatName() string {
	if p.Name != "" {
		return p.Name
	}
	if at := strings.IndexByte(p.Email, '@'); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}
