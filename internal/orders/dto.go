package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// OrderOptionDTO is one priced customization on an order line.
type OrderOptionDTO struct {
	Kind       enums.OptionKind `json:"kind"`
	Value      string           `json:"value"`
	ExtraPrice decimal.Decimal  `json:"extra_price"`
}

// OrderLineDTO is one line of a committed order.
type OrderLineDTO struct {
	ID          uuid.UUID        `json:"id"`
	ProductID   *uuid.UUID       `json:"product_id,omitempty"`
	ProductName string           `json:"product_name"`
	SizeLabel   *string          `json:"size_label,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	LineTotal   decimal.Decimal  `json:"line_total"`
	Options     []OrderOptionDTO `json:"options,omitempty"`
}

// OrderDTO is the full order detail. Degraded flags an order whose best-effort
// checkout committed fewer lines than the cart held, including none; the
// header's persisted line count is the authority for what the cart held.
type OrderDTO struct {
	OrderCode     string               `json:"order_code"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail *string              `json:"customer_email,omitempty"`
	CustomerPhone *string              `json:"customer_phone,omitempty"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Status        enums.OrderStatus    `json:"status"`
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`
	Degraded      bool                 `json:"degraded,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	Lines         []OrderLineDTO       `json:"lines"`
}

// OrderSummaryDTO is the listing row for an order.
type OrderSummaryDTO struct {
	OrderCode     string               `json:"order_code"`
	CustomerName  string               `json:"customer_name"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Status        enums.OrderStatus    `json:"status"`
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// OrderListDTO is one admin page of orders.
type OrderListDTO struct {
	Orders     []OrderSummaryDTO `json:"orders"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		OrderCode:     order.OrderCode,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Degraded:      len(order.Lines) < order.LineCount,
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range order.Lines {
		lineDTO := OrderLineDTO{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			SizeLabel:   line.SizeLabel,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		}
		for _, opt := range line.Options {
			lineDTO.Options = append(lineDTO.Options, OrderOptionDTO{
				Kind:       opt.Kind,
				Value:      opt.Value,
				ExtraPrice: opt.ExtraPrice,
			})
		}
		dto.Lines = append(dto.Lines, lineDTO)
	}
	return dto
}

func toOrderSummaryDTO(order models.Order) OrderSummaryDTO {
	return OrderSummaryDTO{
		OrderCode:     order.OrderCode,
		CustomerName:  order.CustomerName,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	}
}
