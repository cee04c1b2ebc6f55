package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one drink in a session cart. UnitPrice is frozen when the line is
// added; later catalog price changes do not touch an uncommitted line.
type Line struct {
	LocalID     string          `json:"local_id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	SizeLabel   string          `json:"size_label,omitempty"`
	Sugar       string          `json:"sugar,omitempty"`
	Milk        string          `json:"milk,omitempty"`
	Toppings    []string        `json:"toppings,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Cart is the session-scoped shopping cart.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Total sums the line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal)
	}
	return total.Round(2)
}

// FindLine returns the line with the given local id, or nil.
func (c *Cart) FindLine(localID string) *Line {
	for i := range c.Lines {
		if c.Lines[i].LocalID == localID {
			return &c.Lines[i]
		}
	}
	return nil
}
