package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmtolibas/cafeline-backend/internal/orders"
	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
	"github.com/jmtolibas/cafeline-backend/pkg/metrics"
)

var whitespace = regexp.MustCompile(`\s+`)

// Allocator assigns human-readable order codes of the form
// <name-without-spaces>00<three-digit-sequence>. Uniqueness is enforced by
// the primary key on orders.order_code; the allocator reads the highest
// existing sequence for the prefix, inserts optimistically, and retries with
// jitter only when the insert hits a duplicate key.
type Allocator struct {
	repo    orders.Repository
	cfg     config.CheckoutConfig
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	sleep   func(time.Duration)
}

// NewAllocator constructs an order code allocator.
func NewAllocator(repo orders.Repository, cfg config.CheckoutConfig, m *metrics.CheckoutMetrics, logg *logger.Logger) (*Allocator, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.MaxIDAttempts < 1 {
		cfg.MaxIDAttempts = 1
	}
	return &Allocator{
		repo:    repo,
		cfg:     cfg,
		metrics: m,
		logg:    logg,
		sleep:   time.Sleep,
	}, nil
}

// CodePrefix strips all whitespace from the customer name and appends the
// "00" separator.
func CodePrefix(customerName string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(customerName), "") + "00"
}

// Insert allocates a code and inserts the order header. The order's
// OrderCode is set on success. Each attempt re-reads the highest sequence so
// racing checkouts converge; any failure other than a duplicate key aborts
// immediately.
func (a *Allocator) Insert(ctx context.Context, order *models.Order) error {
	prefix := CodePrefix(order.CustomerName)
	for attempt := 0; attempt < a.cfg.MaxIDAttempts; attempt++ {
		candidate := prefix + a.nextSequence(ctx, prefix)
		order.OrderCode = candidate
		err := a.repo.InsertOrder(ctx, order)
		if err == nil {
			if attempt > 0 {
				logCtx := a.logg.WithFields(ctx, map[string]any{"order_code": candidate, "attempts": attempt + 1})
				a.logg.Info(logCtx, "order code allocated after retries")
			}
			return nil
		}
		if !db.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting order header")
		}
		a.metrics.IncIDCollision()
		logCtx := a.logg.WithFields(ctx, map[string]any{"order_code": candidate, "attempt": attempt + 1})
		a.logg.Warn(logCtx, "duplicate order code, retrying")
		a.sleep(a.backoff())
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "failed to allocate an order code")
}

// NextCode returns the next candidate code for the customer without
// inserting anything. Atomic checkout drives its own insert loop with this.
func (a *Allocator) NextCode(ctx context.Context, customerName string) string {
	prefix := CodePrefix(customerName)
	return prefix + a.nextSequence(ctx, prefix)
}

// MaxAttempts returns the configured attempt bound.
func (a *Allocator) MaxAttempts() int {
	return a.cfg.MaxIDAttempts
}

// Backoff returns one jittered retry delay.
func (a *Allocator) Backoff() time.Duration {
	return a.backoff()
}

// Sleep pauses for the given duration using the allocator's clock.
func (a *Allocator) Sleep(d time.Duration) {
	a.sleep(d)
}

// RecordCollision counts one duplicate-key retry.
func (a *Allocator) RecordCollision() {
	a.metrics.IncIDCollision()
}

// nextSequence reads the highest committed sequence for the prefix and
// returns it plus one, padded to at least three digits. The sequence is
// whatever follows the prefix, so it keeps counting past 999 instead of
// wrapping within three digits. Read failures fall back to 001; the insert's
// uniqueness check catches any resulting collision.
func (a *Allocator) nextSequence(ctx context.Context, prefix string) string {
	highest, err := a.repo.HighestCodeForPrefix(ctx, prefix)
	if err != nil || highest == "" {
		return "001"
	}
	n, err := strconv.Atoi(strings.TrimPrefix(highest, prefix))
	if err != nil {
		return "001"
	}
	return fmt.Sprintf("%03d", n+1)
}

func (a *Allocator) backoff() time.Duration {
	min := a.cfg.BackoffMin
	max := a.cfg.BackoffMax
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
