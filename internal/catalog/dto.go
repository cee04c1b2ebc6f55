package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// SizePriceDTO is one size choice for a tiered product.
type SizePriceDTO struct {
	SizeLabel string          `json:"size_label"`
	Price     decimal.Decimal `json:"price"`
}

// MenuItemDTO is how a product appears on the public menu.
type MenuItemDTO struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Category    enums.ProductCategory `json:"category"`
	Type        string                `json:"type,omitempty"`
	Description *string               `json:"description,omitempty"`
	BasePrice   *decimal.Decimal      `json:"base_price,omitempty"`
	HasSizes    bool                  `json:"has_sizes"`
	Sizes       []SizePriceDTO        `json:"sizes,omitempty"`
}

// MenuSectionDTO groups menu items by category.
type MenuSectionDTO struct {
	Category enums.ProductCategory `json:"category"`
	Items    []MenuItemDTO         `json:"items"`
}

// MenuDTO is the full menu response.
type MenuDTO struct {
	Sections []MenuSectionDTO `json:"sections"`
}

func toMenuItemDTO(product models.Product, tiers []models.SizeTier) MenuItemDTO {
	item := MenuItemDTO{
		ID:          product.ID,
		Name:        product.Name,
		Category:    product.Category,
		Type:        product.Type,
		Description: product.Description,
		BasePrice:   product.BasePrice,
		HasSizes:    product.HasSizes,
	}
	if product.HasSizes {
		for _, tier := range tiers {
			item.Sizes = append(item.Sizes, SizePriceDTO{
				SizeLabel: tier.SizeLabel,
				Price:     tier.Price,
			})
		}
	}
	return item
}
