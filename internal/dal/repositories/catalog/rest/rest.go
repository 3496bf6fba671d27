package restrepo

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/trandev/salesdesk/internal/dal/rest"
	"github.com/trandev/salesdesk/internal/service/models/variant"
)

// variantDal represents a product variant as returned by the backend.
type variantDal struct {
	ID            int64  `json:"id"`
	SKU           string `json:"sku"`
	RAM           string `json:"ram"`
	ROM           string `json:"rom"`
	Color         string `json:"color"`
	Price         int64  `json:"price"`
	ProductDetail struct {
		Name string `json:"name"`
	} `json:"product_detail"`
}

func (d *variantDal) toModel() variant.Variant {
	return variant.Variant{
		ID:          d.ID,
		SKU:         d.SKU,
		ProductName: d.ProductDetail.Name,
		RAM:         d.RAM,
		ROM:         d.ROM,
		Color:       d.Color,
		Price:       d.Price,
	}
}

type RestCatalogRepository struct {
	client   *rest.Client
	pageSize int
}

func NewRestCatalogRepository(client *rest.Client, pageSize int) *RestCatalogRepository {
	if pageSize <= 0 {
		pageSize = 200
	}

	return &RestCatalogRepository{client: client, pageSize: pageSize}
}

// ListVariants returns the selectable product variants for the composition
// dialog pickers.
func (r *RestCatalogRepository) ListVariants(ctx context.Context) ([]variant.Variant, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(r.pageSize))

	body, err := r.client.GetJSON(ctx, "/products/variants/", query)
	if err != nil {
		return nil, err
	}

	var records []variantDal
	if err := json.Unmarshal(rest.UnwrapResults(body), &records); err != nil {
		return nil, err
	}

	variants := make([]variant.Variant, len(records))
	for i := range records {
		variants[i] = records[i].toModel()
	}

	return variants, nil
}
