// internal/common/auth/gate.go
package auth

import (
	"crypto/subtle"

	"studybuddy/internal/common/errors"
)

const (
	RoleAdmin     = "admin"
	RoleCounselor = "counselor"
)

// Gate checks the shared secret for each role.
type Gate struct {
	adminSecret     string
	counselorSecret string
	counselors      []string
}

func NewGate(adminSecret, counselorSecret string, counselors []string) *Gate {
	return &Gate{
		adminSecret:     adminSecret,
		counselorSecret: counselorSecret,
		counselors:      append([]string(nil), counselors...),
	}
}

// Counselors returns the configured roster.
func (g *Gate) Counselors() []string {
	return append([]string(nil), g.counselors...)
}

// IsCounselor reports whether name is on the roster.
func (g *Gate) IsCounselor(name string) bool {
	for _, c := range g.counselors {
		if c == name {
			return true
		}
	}
	return false
}

// AuthorizeAdmin fails with ACCESS_DENIED unless secret matches.
func (g *Gate) AuthorizeAdmin(secret string) error {
	if !matches(g.adminSecret, secret) {
		return errors.NewAccessDeniedError(RoleAdmin)
	}
	return nil
}

// AuthorizeCounselor requires the counselor secret and a rostered identity.
func (g *Gate) AuthorizeCounselor(secret, name string) error {
	if !matches(g.counselorSecret, secret) || !g.IsCounselor(name) {
		return errors.NewAccessDeniedError(RoleCounselor)
	}
	return nil
}

// an unset secret never matches
func matches(want, got string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
