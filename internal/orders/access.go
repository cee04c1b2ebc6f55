package orders

import (
	"github.com/google/uuid"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
)

// Viewer is the identity asking to read or replay an order. Exactly one of
// the two ownership mechanisms applies per order: an authenticated owner id,
// or membership in the anonymous session's possession list.
type Viewer struct {
	UserID       *uuid.UUID
	SessionID    string
	SessionCodes []string
	IsAdmin      bool
}

// CanView dispatches on how the order is owned. Owned orders require the
// matching authenticated user; anonymous orders require the originating
// session. Denial is a hard failure, never a login redirect, because an
// anonymous order is unrecoverable outside its session.
func CanView(order *models.Order, viewer Viewer) bool {
	if order == nil {
		return false
	}
	if viewer.IsAdmin {
		return true
	}
	if order.OwnerUserID != nil {
		return viewer.UserID != nil && *viewer.UserID == *order.OwnerUserID
	}
	for _, code := range viewer.SessionCodes {
		if code == order.OrderCode {
			return true
		}
	}
	return false
}
