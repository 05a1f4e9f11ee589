// Package gate decides which view set a session may reach.
package gate

import "github.com/dmitrijs2005/userdesk/internal/client/session"

type Decision int

const (
	// Loading means the session has not been restored yet; render nothing.
	Loading Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Decide is pure: the same state always yields the same decision.
func Decide(st session.State) Decision {
	if !st.Initialized {
		return Loading
	}
	if st.Status == session.StatusAuthenticated && st.Token != "" {
		return Allow
	}
	return Deny
}
