package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

func newTestAllocator(t *testing.T, repo *stubOrdersRepo, cfg config.CheckoutConfig) *Allocator {
	t.Helper()

	allocator, err := NewAllocator(repo, cfg, nil, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	allocator.sleep = func(time.Duration) {}
	return allocator
}

func TestCodePrefixStripsWhitespace(t *testing.T) {
	assert.Equal(t, "JohnDoe00", CodePrefix("  John  Doe "))
	assert.Equal(t, "Maria00", CodePrefix("Maria"))
}

func TestAllocatorContinuesExistingSequence(t *testing.T) {
	repo := &stubOrdersRepo{highest: "JohnDoe00007"}
	allocator := newTestAllocator(t, repo, config.CheckoutConfig{MaxIDAttempts: 3})

	order := &models.Order{CustomerName: "John Doe"}
	require.NoError(t, allocator.Insert(context.Background(), order))
	assert.Equal(t, "JohnDoe00008", order.OrderCode)
}

func TestAllocatorCountsPastThreeDigits(t *testing.T) {
	repo := &stubOrdersRepo{highest: "JohnDoe00999"}
	allocator := newTestAllocator(t, repo, config.CheckoutConfig{MaxIDAttempts: 3})

	order := &models.Order{CustomerName: "John Doe"}
	require.NoError(t, allocator.Insert(context.Background(), order))
	assert.Equal(t, "JohnDoe001000", order.OrderCode)

	repo.highest = "JohnDoe001000"
	next := &models.Order{CustomerName: "John Doe"}
	require.NoError(t, allocator.Insert(context.Background(), next))
	assert.Equal(t, "JohnDoe001001", next.OrderCode)
}

func TestAllocatorStartsAtOne(t *testing.T) {
	repo := &stubOrdersRepo{}
	allocator := newTestAllocator(t, repo, config.CheckoutConfig{MaxIDAttempts: 3})

	order := &models.Order{CustomerName: "Maria"}
	require.NoError(t, allocator.Insert(context.Background(), order))
	assert.Equal(t, "Maria00001", order.OrderCode)
}

func TestAllocatorRetriesDuplicates(t *testing.T) {
	repo := &stubOrdersRepo{
		insertOrderErrs: []error{
			errors.New("duplicate key value violates unique constraint"),
			errors.New("duplicate key value violates unique constraint"),
		},
	}
	allocator := newTestAllocator(t, repo, config.CheckoutConfig{MaxIDAttempts: 6})

	order := &models.Order{CustomerName: "Maria"}
	require.NoError(t, allocator.Insert(context.Background(), order))
	require.Len(t, repo.orders, 1)
}

func TestAllocatorExhaustionIsConflict(t *testing.T) {
	dup := errors.New("duplicate key value violates unique constraint")
	repo := &stubOrdersRepo{insertOrderErrs: []error{dup, dup, dup}}
	allocator := newTestAllocator(t, repo, config.CheckoutConfig{MaxIDAttempts: 3})

	err := allocator.Insert(context.Background(), &models.Order{CustomerName: "Maria"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestAllocatorAbortsOnOtherErrors(t *testing.T) {
	repo := &stubOrdersRepo{insertOrderErrs: []error{errors.New("connection reset")}}
	allocator := newTestAllocator(t, repo, config.CheckoutConfig{MaxIDAttempts: 3})

	err := allocator.Insert(context.Background(), &models.Order{CustomerName: "Maria"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInternal, appErr.Code())
	assert.Empty(t, repo.orders)
}
