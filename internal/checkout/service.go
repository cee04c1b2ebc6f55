package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jmtolibas/cafeline-backend/internal/cart"
	"github.com/jmtolibas/cafeline-backend/internal/catalog"
	"github.com/jmtolibas/cafeline-backend/internal/orders"
	"github.com/jmtolibas/cafeline-backend/internal/pricing"
	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
	"github.com/jmtolibas/cafeline-backend/pkg/metrics"
	"github.com/jmtolibas/cafeline-backend/pkg/outbox"
	"github.com/jmtolibas/cafeline-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service converts a session cart into a durable order.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	cartStore   cart.Store
	catalogRepo catalog.Repository
	ordersRepo  orders.Repository
	possession  orders.PossessionStore
	allocator   *Allocator
	tx          txRunner
	outboxSvc   outboxPublisher
	cfg         config.CheckoutConfig
	metrics     *metrics.CheckoutMetrics
	logg        *logger.Logger
}

// NewService constructs the checkout orchestrator.
func NewService(
	cartStore cart.Store,
	catalogRepo catalog.Repository,
	ordersRepo orders.Repository,
	possession orders.PossessionStore,
	allocator *Allocator,
	tx txRunner,
	outboxSvc outboxPublisher,
	cfg config.CheckoutConfig,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if possession == nil {
		return nil, fmt.Errorf("possession store required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("allocator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cartStore:   cartStore,
		catalogRepo: catalogRepo,
		ordersRepo:  ordersRepo,
		possession:  possession,
		allocator:   allocator,
		tx:          tx,
		outboxSvc:   outboxSvc,
		cfg:         cfg,
		metrics:     m,
		logg:        logg,
	}, nil
}

// Checkout commits the session cart. The cart survives every failure path;
// only a fully committed order clears it.
func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	start := time.Now()
	result, err := s.checkout(ctx, input)
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	s.metrics.ObserveDuration(method, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(failureReason(err))
		return nil, err
	}
	s.metrics.IncSuccess(method)
	return result, nil
}

func (s *service) checkout(ctx context.Context, input Input) (*Result, error) {
	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	var paymentMethod *enums.PaymentMethod
	if strings.TrimSpace(input.PaymentMethod) != "" {
		parsed, err := enums.ParsePaymentMethod(input.PaymentMethod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
		}
		paymentMethod = &parsed
	}

	sessionCart, err := s.cartStore.Load(ctx, input.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if len(sessionCart.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	snap, err := catalog.LoadSnapshot(ctx, s.catalogRepo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog snapshot")
	}

	lines := sessionCart.Lines
	if s.cfg.RevalidatePrices {
		if err := s.revalidate(ctx, snap, lines); err != nil {
			return nil, err
		}
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}
	total = total.Round(2)

	order := &models.Order{
		OwnerUserID:   input.UserID,
		CustomerName:  customerName,
		CustomerEmail: backfill(input.CustomerEmail, input.ProfileEmail),
		CustomerPhone: backfill(input.CustomerPhone, input.ProfilePhone),
		TotalAmount:   total,
		LineCount:     len(lines),
		Status:        initialStatus(paymentMethod),
		PaymentMethod: paymentMethod,
	}

	var skipped int
	if s.cfg.AtomicLines {
		err = s.commitAtomic(ctx, order, lines, snap)
	} else {
		skipped, err = s.commitBestEffort(ctx, order, lines, snap)
	}
	if err != nil {
		return nil, err
	}

	s.finishSession(ctx, input.SessionID, order.OrderCode)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_code":    order.OrderCode,
		"total_amount":  total.String(),
		"status":        order.Status,
		"line_count":    len(lines) - skipped,
		"skipped_lines": skipped,
	})
	s.logg.Info(logCtx, "checkout committed")

	return &Result{
		OrderCode:     order.OrderCode,
		TotalAmount:   total,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		LineCount:     len(lines) - skipped,
		SkippedLines:  skipped,
	}, nil
}

// commitBestEffort inserts the header via the allocator, then persists lines
// one by one. A failed line is logged and skipped; the order survives with
// whatever committed.
func (s *service) commitBestEffort(ctx context.Context, order *models.Order, lines []cart.Line, snap *catalog.Snapshot) (int, error) {
	if err := s.allocator.Insert(ctx, order); err != nil {
		return 0, err
	}

	skipped := 0
	for _, line := range lines {
		if err := s.insertLine(ctx, s.ordersRepo, order.OrderCode, line, snap); err != nil {
			skipped++
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_code": order.OrderCode,
				"product":    line.ProductName,
			})
			s.logg.Error(logCtx, "line insertion failed, continuing with next line", err)
		}
	}
	if skipped > 0 {
		s.metrics.AddSkippedLines(skipped)
		s.metrics.IncDegradedOrder()
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.emitCreated(ctx, tx, order, len(lines)-skipped, skipped)
	})
	if err != nil {
		// The order is committed; a lost event is publisher noise, not a
		// checkout failure.
		s.logg.Error(s.logg.WithOrderCode(ctx, order.OrderCode), "queuing order created event failed", err)
	}
	return skipped, nil
}

// commitAtomic wraps header, lines, options, and the outbox row in one
// transaction. A duplicate order code aborts the transaction, so the
// allocation loop lives out here and retries the whole commit.
func (s *service) commitAtomic(ctx context.Context, order *models.Order, lines []cart.Line, snap *catalog.Snapshot) error {
	for attempt := 0; attempt < s.allocator.MaxAttempts(); attempt++ {
		order.OrderCode = s.allocator.NextCode(ctx, order.CustomerName)
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.ordersRepo.WithTx(tx)
			if err := repo.InsertOrder(ctx, order); err != nil {
				return err
			}
			for _, line := range lines {
				if err := s.insertLine(ctx, repo, order.OrderCode, line, snap); err != nil {
					return err
				}
			}
			return s.emitCreated(ctx, tx, order, len(lines), 0)
		})
		if err == nil {
			return nil
		}
		if db.IsUniqueViolation(err) {
			s.allocator.RecordCollision()
			s.allocator.Sleep(s.allocator.Backoff())
			continue
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "committing order")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "failed to allocate an order code")
}

// insertLine persists one cart line and its options. Option prices resolve
// from the live catalog at commit time; the line's unit price stays frozen.
func (s *service) insertLine(ctx context.Context, repo orders.Repository, orderCode string, line cart.Line, snap *catalog.Snapshot) error {
	row := &models.OrderLine{
		OrderCode:   orderCode,
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice.Round(2),
		LineTotal:   line.LineTotal.Round(2),
	}
	if label := strings.TrimSpace(line.SizeLabel); label != "" {
		row.SizeLabel = &label
	}
	if err := repo.InsertLine(ctx, row); err != nil {
		return err
	}

	resolution := pricing.Resolve(snap, pricing.Selection{
		Sugar:    line.Sugar,
		Milk:     line.Milk,
		Toppings: line.Toppings,
	})
	var options []models.OrderOption
	for _, opt := range resolution.Options {
		options = append(options, models.OrderOption{
			LineID:     row.ID,
			Kind:       opt.Kind,
			Value:      opt.Value,
			ExtraPrice: opt.ExtraPrice.Round(2),
		})
	}
	return repo.InsertOptions(ctx, options)
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, order *models.Order, lineCount, skipped int) error {
	return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.OrderCode,
		Data: payloads.OrderCreatedEvent{
			OrderCode:     order.OrderCode,
			CustomerName:  order.CustomerName,
			TotalAmount:   order.TotalAmount,
			Status:        order.Status,
			PaymentMethod: order.PaymentMethod,
			LineCount:     lineCount,
			SkippedLines:  skipped,
		},
	})
}

// finishSession clears the cart and records the order in the session's
// possession list. Both are advisory once the order is committed.
func (s *service) finishSession(ctx context.Context, sessionID, orderCode string) {
	if err := s.possession.Add(ctx, sessionID, orderCode); err != nil {
		s.logg.Error(s.logg.WithOrderCode(ctx, orderCode), "recording order possession failed", err)
	}
	if err := s.cartStore.Clear(ctx, sessionID); err != nil {
		s.logg.Error(s.logg.WithOrderCode(ctx, orderCode), "clearing cart failed", err)
	}
}

// revalidate re-resolves each line against the live catalog and rejects the
// checkout when a frozen price no longer matches, so a long-idle cart cannot
// commit at a stale price. A line whose product can no longer be resolved is
// rejected too, rather than silently re-pricing to its options alone.
func (s *service) revalidate(ctx context.Context, snap *catalog.Snapshot, lines []cart.Line) error {
	for _, line := range lines {
		if line.ProductID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart line has no product reference").
				WithDetails(map[string]string{"product": line.ProductName})
		}
		product, err := s.catalogRepo.FindProductByID(ctx, *line.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-resolving cart line product")
		}
		if product == nil || !product.IsAvailable {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available").
				WithDetails(map[string]string{"product": line.ProductName})
		}

		resolution := pricing.Resolve(snap, pricing.Selection{
			Product:   product,
			SizeLabel: line.SizeLabel,
			Sugar:     line.Sugar,
			Milk:      line.Milk,
			Toppings:  line.Toppings,
		})
		if !resolution.UnitPrice.Equal(line.UnitPrice) {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart prices are out of date, rebuild the cart").
				WithDetails(map[string]string{
					"product":       line.ProductName,
					"frozen_price":  line.UnitPrice.StringFixed(2),
					"current_price": resolution.UnitPrice.StringFixed(2),
				})
		}
	}
	return nil
}

func initialStatus(method *enums.PaymentMethod) enums.OrderStatus {
	if method != nil && *method == enums.PaymentMethodCash {
		return enums.OrderStatusConfirmed
	}
	return enums.OrderStatusPending
}

func backfill(provided, fallback *string) *string {
	if provided != nil && strings.TrimSpace(*provided) != "" {
		return provided
	}
	if fallback != nil && strings.TrimSpace(*fallback) != "" {
		return fallback
	}
	return nil
}

func failureReason(err error) string {
	if appErr := pkgerrors.As(err); appErr != nil {
		return string(appErr.Code())
	}
	return "internal"
}
