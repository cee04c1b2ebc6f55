package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// Order is the aggregate root persisted at checkout commit. OrderCode is the
// human-readable allocator output and never changes once assigned. TotalAmount
// is computed once at commit; status and payment-method updates must not touch
// it. LineCount records how many lines the cart held at commit, so a read can
// spot an order whose best-effort persistence dropped some of them.
type Order struct {
	OrderCode     string               `gorm:"column:order_code;primaryKey"`
	OwnerUserID   *uuid.UUID           `gorm:"column:owner_user_id;type:uuid"`
	CustomerName  string               `gorm:"column:customer_name;not null"`
	CustomerEmail *string              `gorm:"column:customer_email"`
	CustomerPhone *string              `gorm:"column:customer_phone"`
	TotalAmount   decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	LineCount     int                  `gorm:"column:line_count;not null;default:0"`
	Status        enums.OrderStatus    `gorm:"column:status;type:order_status_enum;not null;default:'pending'"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method;type:payment_method_enum"`
	Lines         []OrderLine          `gorm:"foreignKey:OrderCode;references:OrderCode;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
