// internal/workflow/state.go
package workflow

import (
	"fmt"

	"sales-assistant/internal/models"
)

type State string

const (
	StateStart         State = "start"
	StateProspecting   State = "prospecting"
	StateInsights      State = "insights"
	StateCommunication State = "communication"
	StateEnd           State = "end"
)

// maxSteps bounds one turn: Start to a handler, then the handler to End.
const maxSteps = 2

// transitions is the complete edge set. End has no outgoing edges.
var transitions = map[State][]State{
	StateStart:         {StateProspecting, StateInsights, StateCommunication, StateEnd},
	StateProspecting:   {StateEnd},
	StateInsights:      {StateEnd},
	StateCommunication: {StateEnd},
}

// stateFor maps a routing decision onto the state it enters from Start.
func stateFor(route models.Route) State {
	switch route {
	case models.RouteProspecting:
		return StateProspecting
	case models.RouteInsights:
		return StateInsights
	case models.RouteCommunication:
		return StateCommunication
	default:
		return StateEnd
	}
}

// machine walks one turn through the transition table.
type machine struct {
	current State
	trail   []State
}

func newMachine() *machine {
	return &machine{current: StateStart, trail: []State{StateStart}}
}

func (m *machine) advance(next State) error {
	if len(m.trail) > maxSteps {
		return fmt.Errorf("step limit %d reached at %s", maxSteps, m.current)
	}
	for _, allowed := range transitions[m.current] {
		if allowed == next {
			m.current = next
			m.trail = append(m.trail, next)
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", m.current, next)
}

func (m *machine) done() bool {
	return m.current == StateEnd
}
