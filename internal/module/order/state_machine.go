package order

import "fmt"

// StateMachine validates order state transitions. Terminal states absorb
// replayed gateway events: completed only moves to refunded, and failed
// and refunded accept nothing, so an out-of-order capture can never
// resurrect a refunded order.
type StateMachine struct {
	transitions map[Status][]Status
}

// NewStateMachine creates a new order state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[Status][]Status{
			StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed},
			StatusProcessing: {StatusCompleted, StatusFailed},
			StatusCompleted:  {StatusRefunded},
			StatusFailed:     {}, // Terminal
			StatusRefunded:   {}, // Terminal
		},
	}
}

// CanTransition checks if a transition from `from` to `to` is valid.
func (sm *StateMachine) CanTransition(from, to Status) bool {
	allowed, ok := sm.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition attempts to transition an order to a new state.
func (sm *StateMachine) Transition(order *Order, to Status) error {
	if !sm.CanTransition(order.Status, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, order.Status, to)
	}
	order.Status = to
	return nil
}

// PayableStates returns the states from which a capture or failure event
// may still move the order. Used to scope conditional updates.
func PayableStates() []Status {
	return []Status{StatusPending, StatusProcessing}
}
