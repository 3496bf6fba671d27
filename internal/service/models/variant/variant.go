package variant

import "strings"

// Variant represents a purchasable configuration of a product, carrying its
// own catalog price.
type Variant struct {
	ID          int64  `json:"id"`
	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
	RAM         string `json:"ram"`
	ROM         string `json:"rom"`
	Color       string `json:"color"`
	Price       int64  `json:"price"`
}

// DisplayName joins the product name and the non-empty variant attributes.
func (v Variant) DisplayName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{v.ProductName, v.RAM, v.ROM, v.Color} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " - ")
}
