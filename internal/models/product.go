package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is NUMERIC(10,2) in the database.
type Product struct {
	ID          int64           `json:"id"`
	OrderCode   string          `json:"order_code"`
	EAN13       string          `json:"ean13,omitempty"`
	Description string          `json:"description"`
	ImageRef    string          `json:"image,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
}

// MarshalJSON writes Price with two decimal places.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price string `json:"price"`
	}{product(p), p.Price.StringFixed(2)})
}

// DisplayName mirrors how the shop labels a product in messages.
func (p Product) DisplayName() string {
	if p.Description != "" {
		return p.Description
	}
	return p.OrderCode
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
