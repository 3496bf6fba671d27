package restrepo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/trandev/salesdesk/internal/dal/rest"
	"github.com/trandev/salesdesk/internal/service/models/availability"
	"github.com/trandev/salesdesk/internal/service/models/inventoryitem"
)

// inventoryDal represents one inventory record as returned by the backend.
type inventoryDal struct {
	ID             int64  `json:"id"`
	ProductVariant int64  `json:"product_variant"`
	OnHand         int    `json:"on_hand"`
	Reserved       int    `json:"reserved"`
	ProductName    string `json:"product_name"`
	VariantDisplay string `json:"variant_display"`
	Price          int64  `json:"price"`
}

func (d *inventoryDal) toModel() inventoryitem.InventoryItem {
	return inventoryitem.InventoryItem{
		ID:             d.ID,
		VariantID:      d.ProductVariant,
		ProductName:    d.ProductName,
		VariantDisplay: d.VariantDisplay,
		OnHand:         d.OnHand,
		Reserved:       d.Reserved,
		Price:          d.Price,
	}
}

type RestInventoryRepository struct {
	client *rest.Client
}

func NewRestInventoryRepository(client *rest.Client) *RestInventoryRepository {
	return &RestInventoryRepository{client: client}
}

// FetchAvailability reads the inventory record of a single variant. Lookup
// failures and missing records both resolve to zero availability so a broken
// inventory service can never oversell.
func (r *RestInventoryRepository) FetchAvailability(ctx context.Context, variantID int64) availability.Availability {
	query := url.Values{}
	query.Set("product_variant", strconv.FormatInt(variantID, 10))

	body, err := r.client.GetJSON(ctx, "/inventory/", query)
	if err != nil {
		slog.WarnContext(ctx, "Stock lookup failed, treating variant as out of stock",
			"variant_id", variantID, "error", err)

		return availability.Availability{}
	}

	var records []inventoryDal
	if err := json.Unmarshal(rest.UnwrapResults(body), &records); err != nil {
		slog.WarnContext(ctx, "Stock lookup returned malformed body, treating variant as out of stock",
			"variant_id", variantID, "error", err)

		return availability.Availability{}
	}

	if len(records) == 0 {
		return availability.Availability{}
	}

	return availability.Availability{
		OnHand:   records[0].OnHand,
		Reserved: records[0].Reserved,
	}
}

// ListInventory returns up to pageSize inventory records.
func (r *RestInventoryRepository) ListInventory(ctx context.Context, pageSize int) ([]inventoryitem.InventoryItem, error) {
	query := url.Values{}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}

	body, err := r.client.GetJSON(ctx, "/inventory/", query)
	if err != nil {
		return nil, err
	}

	var records []inventoryDal
	if err := json.Unmarshal(rest.UnwrapResults(body), &records); err != nil {
		return nil, err
	}

	items := make([]inventoryitem.InventoryItem, len(records))
	for i := range records {
		items[i] = records[i].toModel()
	}

	return items, nil
}
