package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jmtolibas/cafeline-backend/internal/catalog"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

func ptrDecimal(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func ptrString(value string) *string {
	return &value
}

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Customs: []models.Product{
			{
				ID:        uuid.New(),
				Name:      "Brown Sugar",
				Category:  enums.ProductCategoryCustom,
				Type:      "Sweetener",
				BasePrice: ptrDecimal("10.00"),
			},
			{
				ID:        uuid.New(),
				Name:      "Oat Milk",
				Category:  enums.ProductCategoryCustom,
				Type:      "Milk",
				BasePrice: ptrDecimal("20.00"),
			},
		},
		Extras: []models.Product{
			{
				ID:        uuid.New(),
				Name:      "Oreo",
				Category:  enums.ProductCategoryExtras,
				BasePrice: ptrDecimal("15.00"),
			},
			{
				ID:        uuid.New(),
				Name:      "Pearls",
				Category:  enums.ProductCategoryExtras,
				BasePrice: ptrDecimal("12.00"),
			},
		},
		Tiers: []models.SizeTier{
			{ProductType: ptrString("Coffee"), SizeLabel: "Small", Price: decimal.RequireFromString("90.00")},
			{ProductType: ptrString("Coffee"), SizeLabel: "Medium", Price: decimal.RequireFromString("105.00")},
			{ProductType: ptrString("Coffee"), SizeLabel: "Large", Price: decimal.RequireFromString("120.00")},
		},
	}
}

func TestResolveTieredProductWithTopping(t *testing.T) {
	snap := testSnapshot()
	latte := &models.Product{
		ID:       uuid.New(),
		Name:     "Latte",
		Category: enums.ProductCategoryStandard,
		Type:     "Coffee",
		HasSizes: true,
	}

	res := Resolve(snap, Selection{
		Product:   latte,
		SizeLabel: "Medium",
		Toppings:  []string{"Oreo"},
	})

	require.True(t, res.BasePrice.Equal(decimal.RequireFromString("105.00")))
	require.True(t, res.UnitPrice.Equal(decimal.RequireFromString("120.00")))
	require.Len(t, res.Options, 1)
	require.Equal(t, enums.OptionKindTopping, res.Options[0].Kind)
	require.True(t, res.Options[0].Matched)

	qty := decimal.NewFromInt(2)
	require.True(t, res.UnitPrice.Mul(qty).Equal(decimal.RequireFromString("240.00")))
}

func TestResolveTieredProductUnmatchedSizeContributesZeroBase(t *testing.T) {
	snap := testSnapshot()
	flatFallback := decimal.RequireFromString("150.00")
	latte := &models.Product{
		ID:        uuid.New(),
		Name:      "Latte",
		Type:      "Coffee",
		HasSizes:  true,
		BasePrice: &flatFallback,
	}

	res := Resolve(snap, Selection{Product: latte, SizeLabel: "Venti"})

	require.True(t, res.BasePrice.IsZero(), "unmatched size must not fall back to the flat price")
	require.True(t, res.UnitPrice.IsZero())
}

func TestResolveSizeLabelMatchingIsTrimmedAndCaseInsensitive(t *testing.T) {
	snap := testSnapshot()
	latte := &models.Product{ID: uuid.New(), Name: "Latte", Type: "coffee", HasSizes: true}

	res := Resolve(snap, Selection{Product: latte, SizeLabel: "  mEdIuM "})

	require.True(t, res.BasePrice.Equal(decimal.RequireFromString("105.00")))
}

func TestResolveTierFallsBackToProductID(t *testing.T) {
	productID := uuid.New()
	snap := testSnapshot()
	snap.Tiers = append(snap.Tiers, models.SizeTier{
		ProductID: &productID,
		SizeLabel: "Solo",
		Price:     decimal.RequireFromString("75.00"),
	})
	seasonal := &models.Product{ID: productID, Name: "Seasonal Brew", Type: "", HasSizes: true}

	res := Resolve(snap, Selection{Product: seasonal, SizeLabel: "Solo"})

	require.True(t, res.BasePrice.Equal(decimal.RequireFromString("75.00")))
}

func TestResolveFlatProductIgnoresSizeLabel(t *testing.T) {
	snap := testSnapshot()
	cookie := &models.Product{
		ID:        uuid.New(),
		Name:      "Cookie",
		BasePrice: ptrDecimal("45.00"),
	}

	withSize := Resolve(snap, Selection{Product: cookie, SizeLabel: "Large"})
	withoutSize := Resolve(snap, Selection{Product: cookie})

	require.True(t, withSize.UnitPrice.Equal(decimal.RequireFromString("45.00")))
	require.True(t, withSize.UnitPrice.Equal(withoutSize.UnitPrice))
}

func TestResolveSugarAndMilkMatchByType(t *testing.T) {
	snap := testSnapshot()
	cookie := &models.Product{ID: uuid.New(), Name: "Cookie", BasePrice: ptrDecimal("45.00")}

	res := Resolve(snap, Selection{
		Product: cookie,
		Sugar:   "less sweet",
		Milk:    "whatever",
	})

	require.Len(t, res.Options, 2)
	require.Equal(t, enums.OptionKindSweetener, res.Options[0].Kind)
	require.Equal(t, "Brown Sugar", res.Options[0].Value)
	require.True(t, res.Options[0].ExtraPrice.Equal(decimal.RequireFromString("10.00")))
	require.Equal(t, enums.OptionKindMilk, res.Options[1].Kind)
	require.Equal(t, "Oat Milk", res.Options[1].Value)
	require.True(t, res.UnitPrice.Equal(decimal.RequireFromString("75.00")))
}

func TestResolveUnmatchedToppingKeptAtZero(t *testing.T) {
	snap := testSnapshot()
	cookie := &models.Product{ID: uuid.New(), Name: "Cookie", BasePrice: ptrDecimal("45.00")}

	res := Resolve(snap, Selection{
		Product:  cookie,
		Toppings: []string{"Stardust"},
	})

	require.Len(t, res.Options, 1)
	require.Equal(t, "Stardust", res.Options[0].Value)
	require.False(t, res.Options[0].Matched)
	require.True(t, res.Options[0].ExtraPrice.IsZero())
	require.True(t, res.UnitPrice.Equal(decimal.RequireFromString("45.00")))
}

func TestResolveToppingMatchIsTrimmedAndCaseInsensitive(t *testing.T) {
	snap := testSnapshot()
	cookie := &models.Product{ID: uuid.New(), Name: "Cookie", BasePrice: ptrDecimal("45.00")}

	res := Resolve(snap, Selection{
		Product:  cookie,
		Toppings: []string{" oreo ", "PEARLS"},
	})

	require.Len(t, res.Options, 2)
	require.True(t, res.Options[0].Matched)
	require.Equal(t, "Oreo", res.Options[0].Value)
	require.True(t, res.Options[1].Matched)
	require.True(t, res.UnitPrice.Equal(decimal.RequireFromString("72.00")))
}

func TestResolveNilProductPricesOptionsOnly(t *testing.T) {
	snap := testSnapshot()

	res := Resolve(snap, Selection{Toppings: []string{"Oreo"}})

	require.True(t, res.BasePrice.IsZero())
	require.True(t, res.UnitPrice.Equal(decimal.RequireFromString("15.00")))
}
