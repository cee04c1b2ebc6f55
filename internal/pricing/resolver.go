package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jmtolibas/cafeline-backend/internal/catalog"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

const (
	typeSweetener = "sweetener"
	typeMilk      = "milk"
)

// Selection is one drink with its customizations, as chosen by the customer.
type Selection struct {
	Product   *models.Product
	SizeLabel string
	Sugar     string
	Milk      string
	Toppings  []string
}

// ResolvedOption is one priced customization on a line. Matched is false when
// the catalog had no product for the requested value; the option still
// attaches at zero rather than rejecting the line.
type ResolvedOption struct {
	Kind       enums.OptionKind
	Value      string
	ExtraPrice decimal.Decimal
	Matched    bool
}

// Resolution is the price breakdown for a selection.
type Resolution struct {
	BasePrice decimal.Decimal
	Options   []ResolvedOption
	UnitPrice decimal.Decimal
}

// Resolve computes the unit price for a selection against a catalog snapshot.
//
// Sized products price through their tier: matched first by shared product
// type, then by direct product id. A sized product with no matching tier
// contributes a zero base, never its flat price. Flat products contribute
// BasePrice, or zero when absent.
func Resolve(snap *catalog.Snapshot, sel Selection) Resolution {
	res := Resolution{BasePrice: decimal.Zero}
	if sel.Product != nil {
		if sel.Product.HasSizes {
			if tier := matchTier(snap.Tiers, sel.Product, sel.SizeLabel); tier != nil {
				res.BasePrice = tier.Price
			}
		} else if sel.Product.BasePrice != nil {
			res.BasePrice = *sel.Product.BasePrice
		}
	}

	if strings.TrimSpace(sel.Sugar) != "" {
		res.Options = append(res.Options, resolveCustom(snap.Customs, enums.OptionKindSweetener, typeSweetener, sel.Sugar))
	}
	if strings.TrimSpace(sel.Milk) != "" {
		res.Options = append(res.Options, resolveCustom(snap.Customs, enums.OptionKindMilk, typeMilk, sel.Milk))
	}
	for _, topping := range sel.Toppings {
		if strings.TrimSpace(topping) == "" {
			continue
		}
		res.Options = append(res.Options, resolveTopping(snap.Extras, topping))
	}

	res.UnitPrice = res.BasePrice
	for _, opt := range res.Options {
		res.UnitPrice = res.UnitPrice.Add(opt.ExtraPrice)
	}
	res.UnitPrice = res.UnitPrice.Round(2)
	return res
}

func matchTier(tiers []models.SizeTier, product *models.Product, sizeLabel string) *models.SizeTier {
	wantSize := normalize(sizeLabel)
	if wantSize == "" {
		return nil
	}
	wantType := normalize(product.Type)
	if wantType != "" {
		for i := range tiers {
			tier := &tiers[i]
			if tier.ProductType == nil || normalize(*tier.ProductType) != wantType {
				continue
			}
			if normalize(tier.SizeLabel) == wantSize {
				return tier
			}
		}
	}
	for i := range tiers {
		tier := &tiers[i]
		if tier.ProductID == nil || *tier.ProductID != product.ID {
			continue
		}
		if normalize(tier.SizeLabel) == wantSize {
			return tier
		}
	}
	return nil
}

// resolveCustom finds the first Custom product of the wanted type. The
// requested value is kept on the option when nothing matches.
func resolveCustom(customs []models.Product, kind enums.OptionKind, wantType, requested string) ResolvedOption {
	for i := range customs {
		product := &customs[i]
		if normalize(product.Type) != wantType {
			continue
		}
		return ResolvedOption{
			Kind:       kind,
			Value:      product.Name,
			ExtraPrice: priceOf(product),
			Matched:    true,
		}
	}
	return ResolvedOption{Kind: kind, Value: strings.TrimSpace(requested), ExtraPrice: decimal.Zero}
}

// resolveTopping matches Extras by exact trimmed case-insensitive name.
// Unmatched toppings attach at zero.
func resolveTopping(extras []models.Product, requested string) ResolvedOption {
	want := normalize(requested)
	for i := range extras {
		product := &extras[i]
		if normalize(product.Name) != want {
			continue
		}
		return ResolvedOption{
			Kind:       enums.OptionKindTopping,
			Value:      product.Name,
			ExtraPrice: priceOf(product),
			Matched:    true,
		}
	}
	return ResolvedOption{Kind: enums.OptionKindTopping, Value: strings.TrimSpace(requested), ExtraPrice: decimal.Zero}
}

func priceOf(product *models.Product) decimal.Decimal {
	if product.BasePrice == nil {
		return decimal.Zero
	}
	return *product.BasePrice
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
