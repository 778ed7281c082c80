package types

import "strings"

// Address is the delivery destination captured at checkout. It is stored as a
// JSON document on the order and never mutated afterwards.
type Address struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Landmark   string `json:"landmark,omitempty"`
}

// IsZero reports whether no address fields were supplied.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Line1) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.PostalCode) == ""
}
