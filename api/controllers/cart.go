package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmtolibas/cafeline-backend/api/responses"
	"github.com/jmtolibas/cafeline-backend/api/validators"
	cartsvc "github.com/jmtolibas/cafeline-backend/internal/cart"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

type addCartLineRequest struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty" validate:"omitempty"`
	ProductName string     `json:"product_name,omitempty" validate:"max=160"`
	SizeLabel   string     `json:"size_label,omitempty" validate:"max=40"`
	Sugar       string     `json:"sugar,omitempty" validate:"max=160"`
	Milk        string     `json:"milk,omitempty" validate:"max=160"`
	Toppings    []string   `json:"toppings,omitempty" validate:"max=20,dive,max=160"`
	Quantity    int        `json:"quantity" validate:"omitempty,min=1,max=100"`
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=100"`
}

// GetCart returns the session cart with its frozen prices.
func GetCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// AddCartLine prices the selection and appends it to the session cart.
func AddCartLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddLine(r.Context(), sessionID, cartsvc.AddLineInput{
			ProductID:   payload.ProductID,
			ProductName: payload.ProductName,
			SizeLabel:   payload.SizeLabel,
			Sugar:       payload.Sugar,
			Milk:        payload.Milk,
			Toppings:    payload.Toppings,
			Quantity:    payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

// UpdateCartLine changes a line's quantity. The frozen unit price never
// recomputes here.
func UpdateCartLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		localID := chi.URLParam(r, "localID")
		if localID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart line id is required"))
			return
		}

		var payload updateCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.UpdateQuantity(r.Context(), sessionID, localID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// RemoveCartLine drops a line from the session cart.
func RemoveCartLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		localID := chi.URLParam(r, "localID")
		if localID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart line id is required"))
			return
		}

		cart, err := svc.RemoveLine(r.Context(), sessionID, localID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// ClearCart empties the session cart.
func ClearCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
