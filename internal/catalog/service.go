package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
)

// Service exposes read operations over the product catalog.
type Service interface {
	Menu(ctx context.Context) (*MenuDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo Repository
}

// NewService constructs a catalog service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// Menu returns available products grouped by category, with size tiers
// attached to sized drinks. Tiers shared by product type apply to every
// product of that type.
func (s *service) Menu(ctx context.Context) (*MenuDTO, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading menu")
	}
	tiers, err := s.repo.ListSizeTiers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading size tiers")
	}

	menu := &MenuDTO{}
	var current *MenuSectionDTO
	for _, product := range products {
		if !product.IsAvailable {
			continue
		}
		if current == nil || current.Category != product.Category {
			menu.Sections = append(menu.Sections, MenuSectionDTO{Category: product.Category})
			current = &menu.Sections[len(menu.Sections)-1]
		}
		current.Items = append(current.Items, toMenuItemDTO(product, tiersForProduct(product, tiers)))
	}
	return menu, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func tiersForProduct(product models.Product, tiers []models.SizeTier) []models.SizeTier {
	var matched []models.SizeTier
	for _, tier := range tiers {
		if tier.ProductType != nil && strings.EqualFold(strings.TrimSpace(*tier.ProductType), strings.TrimSpace(product.Type)) {
			matched = append(matched, tier)
			continue
		}
		if tier.ProductID != nil && *tier.ProductID == product.ID {
			matched = append(matched, tier)
		}
	}
	return matched
}
