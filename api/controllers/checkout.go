package controllers

import (
	"net/http"

	"github.com/jmtolibas/cafeline-backend/api/middleware"
	"github.com/jmtolibas/cafeline-backend/api/responses"
	"github.com/jmtolibas/cafeline-backend/api/validators"
	checkoutsvc "github.com/jmtolibas/cafeline-backend/internal/checkout"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName  string  `json:"customer_name" validate:"required,max=160"`
	CustomerEmail *string `json:"customer_email,omitempty" validate:"omitempty,email,max=160"`
	CustomerPhone *string `json:"customer_phone,omitempty" validate:"omitempty,max=40"`
	PaymentMethod string  `json:"payment_method,omitempty" validate:"omitempty,max=20"`
}

// Checkout commits the session cart into a durable order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), checkoutsvc.Input{
			SessionID:     sessionID,
			UserID:        userIDFromRequest(r),
			CustomerName:  payload.CustomerName,
			CustomerEmail: payload.CustomerEmail,
			CustomerPhone: payload.CustomerPhone,
			ProfileEmail:  optionalString(middleware.EmailFromContext(r.Context())),
			ProfilePhone:  optionalString(middleware.PhoneFromContext(r.Context())),
			PaymentMethod: payload.PaymentMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
