package restrepo

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/trandev/salesdesk/internal/dal/rest"
	"github.com/trandev/salesdesk/internal/service/models/customer"
)

type customerDal struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (d *customerDal) toModel() customer.Customer {
	return customer.Customer{
		ID:    d.ID,
		Name:  d.Name,
		Phone: d.Phone,
	}
}

type RestCustomerRepository struct {
	client   *rest.Client
	pageSize int
}

func NewRestCustomerRepository(client *rest.Client, pageSize int) *RestCustomerRepository {
	if pageSize <= 0 {
		pageSize = 200
	}

	return &RestCustomerRepository{client: client, pageSize: pageSize}
}

// ListCustomers returns the selectable customers for the composition dialog.
func (r *RestCustomerRepository) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(r.pageSize))

	body, err := r.client.GetJSON(ctx, "/customers/", query)
	if err != nil {
		return nil, err
	}

	var records []customerDal
	if err := json.Unmarshal(rest.UnwrapResults(body), &records); err != nil {
		return nil, err
	}

	customers := make([]customer.Customer, len(records))
	for i := range records {
		customers[i] = records[i].toModel()
	}

	return customers, nil
}
