// Package navigation selects the top-level screen flow from session state.
package navigation

// Flow identifies exactly one top-level screen flow.
type Flow string

const (
	FlowSplash        Flow = "splash"
	FlowWelcome       Flow = "welcome"
	FlowSignIn        Flow = "sign_in"
	FlowRoleSelection Flow = "role_selection"
	FlowMainTabs      Flow = "main_tabs"
)

// Inputs are the flags the gate decides on. SplashAcknowledged and
// UserLoading are transient UI state; the rest come from the session store.
type Inputs struct {
	SplashAcknowledged bool
	Authenticated      bool
	UserLoading        bool
	RoleSelected       bool
	HasSeenWelcome     bool
}

// Select maps the inputs to a flow. Pure, exhaustive, first match wins.
// While the current-user fetch is loading, the splash stays up regardless of
// the authenticated sub-state.
func Select(in Inputs) Flow {
	switch {
	case !in.SplashAcknowledged:
		return FlowSplash
	case in.Authenticated && in.UserLoading:
		return FlowSplash
	case in.Authenticated && !in.RoleSelected:
		return FlowRoleSelection
	case in.Authenticated:
		return FlowMainTabs
	case !in.HasSeenWelcome:
		return FlowWelcome
	default:
		return FlowSignIn
	}
}
