package catalog

import (
	"context"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// Snapshot is a point-in-time view of the catalog slices the pricing resolver
// needs: customization products, topping products, and every size tier.
type Snapshot struct {
	Customs []models.Product
	Extras  []models.Product
	Tiers   []models.SizeTier
}

// LoadSnapshot reads the pricing-relevant catalog slices in one pass.
func LoadSnapshot(ctx context.Context, repo Repository) (*Snapshot, error) {
	customs, err := repo.ListByCategory(ctx, enums.ProductCategoryCustom)
	if err != nil {
		return nil, err
	}
	extras, err := repo.ListByCategory(ctx, enums.ProductCategoryExtras)
	if err != nil {
		return nil, err
	}
	tiers, err := repo.ListSizeTiers(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Customs: customs,
		Extras:  extras,
		Tiers:   tiers,
	}, nil
}
