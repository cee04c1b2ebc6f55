package checkout

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// Input is the validated checkout payload. ProfileEmail and ProfilePhone are
// the authenticated user's stored contact details, used to backfill whatever
// the form left blank.
type Input struct {
	SessionID     string
	UserID        *uuid.UUID
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	ProfileEmail  *string
	ProfilePhone  *string
	PaymentMethod string
}

// Result is the checkout confirmation. LineCount and SkippedLines feed logs,
// metrics, and the outbox event; they never reach the customer response, which
// carries only the order identity, total, status, and recorded payment method.
type Result struct {
	OrderCode     string
	TotalAmount   decimal.Decimal
	Status        enums.OrderStatus
	PaymentMethod *enums.PaymentMethod
	LineCount     int
	SkippedLines  int
}

// MarshalJSON keeps the customer-facing body to the confirmation fields, with
// the total rendered at two decimal places.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OrderCode     string               `json:"order_code"`
		TotalAmount   string               `json:"total_amount"`
		Status        enums.OrderStatus    `json:"status"`
		PaymentMethod *enums.PaymentMethod `json:"payment_method"`
	}{
		OrderCode:     r.OrderCode,
		TotalAmount:   r.TotalAmount.StringFixed(2),
		Status:        r.Status,
		PaymentMethod: r.PaymentMethod,
	})
}
