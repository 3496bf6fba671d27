package availability

// Availability holds the inventory counts of a single product variant.
type Availability struct {
	OnHand   int `json:"onHand"`
	Reserved int `json:"reserved"`
}

// Available returns the quantity sellable right now: on-hand minus reserved,
// floored at zero.
func (a Availability) Available() int {
	available := a.OnHand - a.Reserved
	if available < 0 {
		return 0
	}

	return available
}
