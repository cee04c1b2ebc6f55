package controllers

import (
	"net/http"

	"github.com/jmtolibas/cafeline-backend/api/responses"
	"github.com/jmtolibas/cafeline-backend/internal/catalog"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

// Menu returns the available catalog grouped by category.
func Menu(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		menu, err := svc.Menu(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, menu)
	}
}
