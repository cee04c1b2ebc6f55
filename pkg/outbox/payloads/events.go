package payloads

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// OrderCreatedEvent signals a committed checkout.
type OrderCreatedEvent struct {
	OrderCode     string               `json:"order_code"`
	CustomerName  string               `json:"customer_name"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Status        enums.OrderStatus    `json:"status"`
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`
	LineCount     int                  `json:"line_count"`
	SkippedLines  int                  `json:"skipped_lines,omitempty"`
}

// OrderStatusChangedEvent is emitted on every lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderCode  string            `json:"order_code"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
	ChangedAt  time.Time         `json:"changed_at"`
}

// OrderMarkedPaidEvent reports a payment settlement shortcut.
type OrderMarkedPaidEvent struct {
	OrderCode  string            `json:"order_code"`
	FromStatus enums.OrderStatus `json:"from_status"`
	PaidAt     time.Time         `json:"paid_at"`
}
