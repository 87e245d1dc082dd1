package guard

import (
	"go-repair-shop/internal/model"
	"go-repair-shop/internal/session"
)

const DefaultUnauthorizedTarget = "login"

type Reason string

const (
	ReasonNone      Reason = ""
	ReasonNoSession Reason = "no_session"
	ReasonRole      Reason = "role"
)

type Decision struct {
	Allowed  bool
	Redirect string
	Reason   Reason
	Session  session.Session
}

// Guard decides page access from the locally stored session only. Stale or
// forged tokens are left for the server to reject.
type Guard struct {
	store              session.Store
	unauthorizedTarget string
}

func New(store session.Store, unauthorizedTarget string) *Guard {
	if unauthorizedTarget == "" {
		unauthorizedTarget = DefaultUnauthorizedTarget
	}
	return &Guard{store: store, unauthorizedTarget: unauthorizedTarget}
}

// Check allows entry when an access token is stored and, if roles are given,
// the stored user holds one of them.
func (g *Guard) Check(roles ...model.Role) Decision {
	s := session.Load(g.store)
	if s.AccessToken == "" {
		return Decision{Redirect: g.unauthorizedTarget, Reason: ReasonNoSession}
	}
	if !s.HasRole(roles...) {
		return Decision{Redirect: g.unauthorizedTarget, Reason: ReasonRole, Session: s}
	}
	return Decision{Allowed: true, Session: s}
}
