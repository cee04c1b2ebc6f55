package orders

import (
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
)

// statusTransitions is the order lifecycle. Pending orders can be confirmed
// or cancelled; confirmed orders walk the fulfillment chain one step at a
// time. Terminal states have no exits.
var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed: {enums.OrderStatusPreparing},
	enums.OrderStatusPreparing: {enums.OrderStatusReady},
	enums.OrderStatusReady:     {enums.OrderStatusCompleted},
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a state-conflict error when the step is illegal.
func ValidateTransition(from, to enums.OrderStatus) error {
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot move from "+from.String()+" to "+to.String())
	}
	return nil
}

// CanMarkPaid reports whether the payment shortcut applies. Any non-terminal
// order snaps to confirmed when payment settles.
func CanMarkPaid(from enums.OrderStatus) bool {
	return !from.IsTerminal()
}
