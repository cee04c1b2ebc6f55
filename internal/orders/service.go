package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"

	"github.com/jmtolibas/cafeline-backend/internal/cart"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
	"github.com/jmtolibas/cafeline-backend/pkg/outbox"
	"github.com/jmtolibas/cafeline-backend/pkg/outbox/payloads"
	"github.com/jmtolibas/cafeline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order retrieval and lifecycle operations.
type Service interface {
	GetOrder(ctx context.Context, code string, viewer Viewer) (*OrderDTO, error)
	MyOrders(ctx context.Context, viewer Viewer) ([]OrderSummaryDTO, error)
	Reorder(ctx context.Context, code string, viewer Viewer) (*cart.Cart, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderListDTO, error)
	UpdateStatus(ctx context.Context, code string, to enums.OrderStatus) (*OrderDTO, error)
	MarkPaid(ctx context.Context, code string) (*OrderDTO, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	cartStore cart.Store
	outboxSvc outboxPublisher
	logg      *logger.Logger
}

// NewService constructs an orders service instance.
func NewService(repo Repository, tx txRunner, cartStore cart.Store, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		cartStore: cartStore,
		outboxSvc: outboxSvc,
		logg:      logg,
	}, nil
}

// GetOrder loads an order for a viewer. Access denial is distinct from not
// found: a viewer who is not the owner learns the order exists but nothing
// else.
func (s *service) GetOrder(ctx context.Context, code string, viewer Viewer) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	if !CanView(order, viewer) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this order")
	}
	return toOrderDTO(order), nil
}

// MyOrders lists the viewer's own orders: owned rows for authenticated users,
// possession-list rows for anonymous sessions.
func (s *service) MyOrders(ctx context.Context, viewer Viewer) ([]OrderSummaryDTO, error) {
	var rows []OrderSummaryDTO
	if viewer.UserID != nil {
		orders, err := s.repo.ListByOwner(ctx, viewer.UserID.String())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing owned orders")
		}
		for _, order := range orders {
			rows = append(rows, toOrderSummaryDTO(order))
		}
		return rows, nil
	}
	orders, err := s.repo.FindByCodes(ctx, viewer.SessionCodes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing session orders")
	}
	for _, order := range orders {
		rows = append(rows, toOrderSummaryDTO(order))
	}
	return rows, nil
}

// Reorder replaces the session cart with the lines of a prior order. Unit
// prices come from the order itself, so the rebuilt cart carries the
// historical price snapshot rather than whatever the catalog prices today.
func (s *service) Reorder(ctx context.Context, code string, viewer Viewer) (*cart.Cart, error) {
	order, err := s.loadOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	if !CanView(order, viewer) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this order")
	}
	if len(order.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no lines to reorder")
	}
	if strings.TrimSpace(viewer.SessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	rebuilt := &cart.Cart{}
	for _, line := range order.Lines {
		cartLine := cart.Line{
			LocalID:     newLocalID(),
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		}
		if line.SizeLabel != nil {
			cartLine.SizeLabel = *line.SizeLabel
		}
		for _, opt := range line.Options {
			switch opt.Kind {
			case enums.OptionKindSweetener:
				cartLine.Sugar = opt.Value
			case enums.OptionKindMilk:
				cartLine.Milk = opt.Value
			case enums.OptionKindTopping:
				cartLine.Toppings = append(cartLine.Toppings, opt.Value)
			}
		}
		rebuilt.Lines = append(rebuilt.Lines, cartLine)
	}

	if err := s.cartStore.Save(ctx, viewer.SessionID, rebuilt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving rebuilt cart")
	}

	logCtx := s.logg.WithOrderCode(ctx, code)
	s.logg.Info(logCtx, "order recreated in cart")
	return rebuilt, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderListDTO, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	dto := &OrderListDTO{NextCursor: list.NextCursor}
	for _, order := range list.Orders {
		dto.Orders = append(dto.Orders, toOrderSummaryDTO(order))
	}
	return dto, nil
}

// UpdateStatus applies one lifecycle step and emits the change in the same
// transaction as the update.
func (s *service) UpdateStatus(ctx context.Context, code string, to enums.OrderStatus) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(order.Status, to); err != nil {
		return nil, err
	}

	from := order.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, code, to); err != nil {
			return err
		}
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   code,
			Data: payloads.OrderStatusChangedEvent{
				OrderCode:  code,
				FromStatus: from,
				ToStatus:   to,
				ChangedAt:  time.Now(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	order.Status = to
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_code": code,
		"from":       from,
		"to":         to,
	})
	s.logg.Info(logCtx, "order status updated")
	return toOrderDTO(order), nil
}

// MarkPaid is the payment settlement shortcut: any non-terminal order snaps
// to confirmed.
func (s *service) MarkPaid(ctx context.Context, code string) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	if !CanMarkPaid(order.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already "+order.Status.String())
	}

	from := order.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, code, enums.OrderStatusConfirmed); err != nil {
			return err
		}
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderMarkedPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   code,
			Data: payloads.OrderMarkedPaidEvent{
				OrderCode:  code,
				FromStatus: from,
				PaidAt:     time.Now(),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order paid")
	}

	order.Status = enums.OrderStatusConfirmed
	logCtx := s.logg.WithOrderCode(ctx, code)
	s.logg.Info(logCtx, "order marked paid")
	return toOrderDTO(order), nil
}

func newLocalID() string {
	return uuid.NewString()
}

func (s *service) loadOrder(ctx context.Context, code string) (*models.Order, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code is required")
	}
	order, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}
