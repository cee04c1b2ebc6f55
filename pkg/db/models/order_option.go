package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// OrderOption is one customization attached to an order line. Each kind
// contributes its ExtraPrice independently to the line's unit price.
type OrderOption struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LineID     uuid.UUID        `gorm:"column:line_id;type:uuid;not null;index"`
	Kind       enums.OptionKind `gorm:"column:kind;type:option_kind_enum;not null"`
	Value      string           `gorm:"column:value;not null"`
	ExtraPrice decimal.Decimal  `gorm:"column:extra_price;type:numeric(12,2);not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
