package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// Product is a catalog entry: a standard drink, a customization option
// (category custom), or a topping (category extras). BasePrice is meaningful
// only when HasSizes is false; sized products price through SizeTier rows.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Category    enums.ProductCategory `gorm:"column:category;type:product_category_enum;not null"`
	Type        string                `gorm:"column:type;not null;default:''"`
	Description *string               `gorm:"column:description"`
	BasePrice   *decimal.Decimal      `gorm:"column:base_price;type:numeric(12,2)"`
	HasSizes    bool                  `gorm:"column:has_sizes;not null;default:false"`
	IsAvailable bool                  `gorm:"column:is_available;not null;default:true"`
	SizeTiers   []SizeTier            `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
