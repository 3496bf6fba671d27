package customer

// Customer represents a selectable customer for attachment to an order.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Label is the picker label shown in the dashboard.
func (c Customer) Label() string {
	return c.Name + " - " + c.Phone
}
