package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jmtolibas/cafeline-backend/api/middleware"
	ordersvc "github.com/jmtolibas/cafeline-backend/internal/orders"
	pkgAuth "github.com/jmtolibas/cafeline-backend/pkg/auth"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
)

func sessionIDFromRequest(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session cookie is required")
	}
	return sessionID, nil
}

func userIDFromRequest(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// viewerFromRequest assembles the tagged viewer identity: an authenticated
// user id when a token was presented, plus the anonymous session's order
// possession list.
func viewerFromRequest(r *http.Request, possession ordersvc.PossessionStore) (ordersvc.Viewer, error) {
	viewer := ordersvc.Viewer{
		UserID:    userIDFromRequest(r),
		SessionID: middleware.SessionIDFromContext(r.Context()),
		IsAdmin:   middleware.RoleFromContext(r.Context()) == string(pkgAuth.RoleAdmin),
	}
	if viewer.SessionID != "" && possession != nil {
		codes, err := possession.List(r.Context(), viewer.SessionID)
		if err != nil {
			return viewer, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading session orders")
		}
		viewer.SessionCodes = codes
	}
	return viewer, nil
}
