package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmtolibas/cafeline-backend/api/responses"
	ordersvc "github.com/jmtolibas/cafeline-backend/internal/orders"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

// GetOrder returns one order for its owner or originating session.
func GetOrder(svc ordersvc.Service, possession ordersvc.PossessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "orderCode")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order code is required"))
			return
		}

		viewer, err := viewerFromRequest(r, possession)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), code, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// MyOrders lists the caller's own orders.
func MyOrders(svc ordersvc.Service, possession ordersvc.PossessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFromRequest(r, possession)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.MyOrders(r.Context(), viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// Reorder rebuilds the session cart from a prior order.
func Reorder(svc ordersvc.Service, possession ordersvc.PossessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "orderCode")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order code is required"))
			return
		}

		viewer, err := viewerFromRequest(r, possession)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Reorder(r.Context(), code, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}
