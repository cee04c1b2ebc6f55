package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/internal/catalog"
	"github.com/jmtolibas/cafeline-backend/internal/pricing"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
)

// Service exposes session cart operations. Prices freeze at add-time; edits
// only ever recompute the line total from the frozen unit price.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddLine(ctx context.Context, sessionID string, input AddLineInput) (*Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, localID string, quantity int) (*Cart, error)
	RemoveLine(ctx context.Context, sessionID, localID string) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// AddLineInput is the payload to add one drink to the cart.
type AddLineInput struct {
	ProductID   *uuid.UUID
	ProductName string
	SizeLabel   string
	Sugar       string
	Milk        string
	Toppings    []string
	Quantity    int
}

type service struct {
	store       Store
	catalogRepo catalog.Repository
}

// NewService builds a cart service backed by the provided stack.
func NewService(store Store, catalogRepo catalog.Repository) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{store: store, catalogRepo: catalogRepo}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return cart, nil
}

func (s *service) AddLine(ctx context.Context, sessionID string, input AddLineInput) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if input.ProductID == nil && strings.TrimSpace(input.ProductName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a product reference is required")
	}
	if input.Quantity < 1 {
		input.Quantity = 1
	}

	selection := pricing.Selection{
		SizeLabel: input.SizeLabel,
		Sugar:     input.Sugar,
		Milk:      input.Milk,
		Toppings:  input.Toppings,
	}
	productName := strings.TrimSpace(input.ProductName)
	if input.ProductID != nil {
		product, err := s.catalogRepo.FindProductByID(ctx, *input.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if !product.IsAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
		}
		selection.Product = product
		productName = product.Name
	}

	snap, err := catalog.LoadSnapshot(ctx, s.catalogRepo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog snapshot")
	}
	resolution := pricing.Resolve(snap, selection)

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	line := Line{
		LocalID:     uuid.NewString(),
		ProductID:   input.ProductID,
		ProductName: productName,
		SizeLabel:   strings.TrimSpace(input.SizeLabel),
		Sugar:       strings.TrimSpace(input.Sugar),
		Milk:        strings.TrimSpace(input.Milk),
		Toppings:    trimAll(input.Toppings),
		Quantity:    input.Quantity,
		UnitPrice:   resolution.UnitPrice,
	}
	line.LineTotal = line.UnitPrice.Mul(quantityDecimal(line.Quantity)).Round(2)
	cart.Lines = append(cart.Lines, line)

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return cart, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, localID string, quantity int) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	line := cart.FindLine(localID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	line.Quantity = quantity
	line.LineTotal = line.UnitPrice.Mul(quantityDecimal(quantity)).Round(2)

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return cart, nil
}

func (s *service) RemoveLine(ctx context.Context, sessionID, localID string) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	kept := cart.Lines[:0]
	found := false
	for _, line := range cart.Lines {
		if line.LocalID == localID {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	cart.Lines = kept

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return cart, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

func quantityDecimal(quantity int) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity))
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
