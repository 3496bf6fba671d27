package inventoryitem

// InventoryItem represents one inventory record of the backend, one per
// product variant.
type InventoryItem struct {
	ID             int64  `json:"id"`
	VariantID      int64  `json:"variantId"`
	ProductName    string `json:"productName"`
	VariantDisplay string `json:"variantDisplay"`
	OnHand         int    `json:"onHand"`
	Reserved       int    `json:"reserved"`
	Price          int64  `json:"price"`
}
