package domain

import "fmt"

// Flow is an ordered list of lifecycle states, non-terminal to terminal.
// Transitions are strictly forward one step at a time; the last state is
// terminal. Each state corresponds 1:1 to a display lane.
type Flow []Status

// KitchenFlow is the full preparation pipeline shown on the kitchen board.
var KitchenFlow = Flow{StatusReceived, StatusPreparing, StatusPlating, StatusReady}

// CustomerFlow is the simplified vocabulary shown to customers. Which preset
// applies depends on the view; both end at ready.
var CustomerFlow = Flow{StatusNew, StatusInProgress, StatusReady}

// FlowPreset resolves a configured preset name to its flow.
func FlowPreset(name string) (Flow, error) {
	switch name {
	case "", "kitchen":
		return KitchenFlow, nil
	case "customer":
		return CustomerFlow, nil
	default:
		return nil, fmt.Errorf("unknown flow preset %q", name)
	}
}

// Index returns the position of s in the flow, -1 when s is not part of it.
func (f Flow) Index(s Status) int {
	for i, st := range f {
		if st == s {
			return i
		}
	}
	return -1
}

// Terminal returns the flow's final state.
func (f Flow) Terminal() Status {
	return f[len(f)-1]
}

// IsTerminal reports whether s is the flow's final state.
func (f Flow) IsTerminal(s Status) bool {
	return s == f.Terminal()
}

// Next returns the state one step forward. It returns false for the terminal
// state and for states outside the flow; advancing past the end is a no-op
// by contract, not an error.
func (f Flow) Next(s Status) (Status, bool) {
	idx := f.Index(s)
	if idx < 0 || idx >= len(f)-1 {
		return s, false
	}
	return f[idx+1], true
}

// Lanes groups orders into display lanes keyed by status. Every order whose
// status belongs to the flow lands in exactly one lane; orders in unknown
// states are left out rather than guessed at. Relative order is preserved.
func (f Flow) Lanes(orders []Order) map[Status][]Order {
	lanes := make(map[Status][]Order, len(f))
	for _, st := range f {
		lanes[st] = []Order{}
	}
	for _, o := range orders {
		if _, ok := lanes[o.Status]; ok {
			lanes[o.Status] = append(lanes[o.Status], o)
		}
	}
	return lanes
}
