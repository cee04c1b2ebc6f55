package checkout

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jmtolibas/cafeline-backend/internal/orders"
	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

func setupAllocatorTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:alloc_concurrency?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	// One connection serializes sqlite access; goroutines still interleave
	// between the highest-code read and the insert, which is the race the
	// unique primary key has to resolve.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ddl := `
CREATE TABLE IF NOT EXISTS orders (
  order_code TEXT PRIMARY KEY,
  owner_user_id TEXT,
  customer_name TEXT NOT NULL,
  customer_email TEXT,
  customer_phone TEXT,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  line_count INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestAllocatorConcurrentInsertsYieldDistinctCodes(t *testing.T) {
	db := setupAllocatorTestDB(t)
	repo := orders.NewRepository(db)

	logg := logger.New(logger.Options{ServiceName: "test"})
	allocator, err := NewAllocator(repo, config.CheckoutConfig{MaxIDAttempts: 32}, nil, logg)
	require.NoError(t, err)
	allocator.sleep = func(time.Duration) {}

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	codes := make([]string, 0, workers)
	var errs []error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order := &models.Order{
				CustomerName: "Race Condition",
				TotalAmount:  decimal.NewFromInt(100),
				Status:       enums.OrderStatusPending,
			}
			insertErr := allocator.Insert(context.Background(), order)
			mu.Lock()
			defer mu.Unlock()
			if insertErr != nil {
				errs = append(errs, insertErr)
				return
			}
			codes = append(codes, order.OrderCode)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, codes, workers)

	seen := make(map[string]struct{}, workers)
	for _, code := range codes {
		assert.True(t, strings.HasPrefix(code, "RaceCondition00"), code)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, workers)
}
