package enums

import "fmt"

// ProductCategory partitions the catalog into base drinks, customization
// options, and topping extras.
type ProductCategory string

const (
	ProductCategoryStandard ProductCategory = "standard"
	ProductCategoryCustom   ProductCategory = "custom"
	ProductCategoryExtras   ProductCategory = "extras"
)

var validProductCategories = []ProductCategory{
	ProductCategoryStandard,
	ProductCategoryCustom,
	ProductCategoryExtras,
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
