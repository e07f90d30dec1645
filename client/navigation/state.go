package navigation

import (
	"fmt"

	"github.com/fastygo/taskboard/domain"
)

// Phase is the coarse navigation state.
type Phase int

const (
	// PhaseUnresolved holds until the first session check returns, so the landing
	// view is never shown to a visitor who is about to be redirected.
	PhaseUnresolved Phase = iota
	PhaseAnonymous
	PhaseAuthenticating
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseUnresolved:
		return "unresolved"
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the full navigation state. Mode and Confirmed only matter while authenticating.
type State struct {
	Phase     Phase
	Mode      domain.AuthMode
	Confirmed bool
	Notice    string
}

func anonymous() State { return State{Phase: PhaseAnonymous} }

func authenticated() State { return State{Phase: PhaseAuthenticated} }

func authenticating(mode domain.AuthMode) State {
	return State{Phase: PhaseAuthenticating, Mode: mode}
}

// View maps the state to the screen the presentation layer should show.
func (s State) View() domain.View {
	switch s.Phase {
	case PhaseAnonymous:
		return domain.ViewLanding
	case PhaseAuthenticating:
		if s.Mode == domain.ModeSignUp {
			if s.Confirmed {
				return domain.ViewConfirmation
			}
			return domain.ViewSignUp
		}
		return domain.ViewSignIn
	case PhaseAuthenticated:
		return domain.ViewDashboard
	default:
		return domain.ViewLoading
	}
}

func (s State) String() string {
	if s.Phase != PhaseAuthenticating {
		return s.Phase.String()
	}
	if s.Confirmed {
		return fmt.Sprintf("authenticating(%s, confirmed)", s.Mode)
	}
	return fmt.Sprintf("authenticating(%s)", s.Mode)
}

// Transition records one state change.
type Transition struct {
	From   State
	To     State
	Reason string
}
