package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SizeTier associates a price with a (product type, size label) pair. Tiers
// are shared across products of the same type; ProductID is the fallback
// association for one-off sized products.
type SizeTier struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductType *string         `gorm:"column:product_type"`
	ProductID   *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	SizeLabel   string          `gorm:"column:size_label;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
