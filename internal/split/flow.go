package split

import "github.com/mmynk/tablesplit/internal/models"

// FlowState is the session's single payment pointer.
// It is exactly one of Idle, Selecting or MethodChosen.
type FlowState interface {
	isFlowState()
}

// Idle means no guest is paying.
type Idle struct{}

// Selecting means Guest is paying but has not picked a method yet.
type Selecting struct {
	Guest int
}

// MethodChosen means Guest picked Method and is waiting for confirmation.
type MethodChosen struct {
	Guest  int
	Method models.PaymentMethod
}

func (Idle) isFlowState()         {}
func (Selecting) isFlowState()    {}
func (MethodChosen) isFlowState() {}

// activeGuest returns the guest the flow points at, if any.
func activeGuest(f FlowState) (int, bool) {
	switch st := f.(type) {
	case Selecting:
		return st.Guest, true
	case MethodChosen:
		return st.Guest, true
	}
	return 0, false
}
