package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed storefront order. Its total is always derived from Items.
type Order struct {
	ID          int64       `json:"id"`
	UserID      *int64      `json:"user_id,omitempty"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone_number,omitempty"`
	CompanyName string      `json:"company_name,omitempty"`
	Address     string      `json:"address"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is one product line of an order, priced as it was in the cart.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// MarshalJSON writes Price with two decimal places.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type orderItem OrderItem
	return json.Marshal(struct {
		orderItem
		Price string `json:"price"`
	}{orderItem(i), i.Price.StringFixed(2)})
}

func (i OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Cost())
	}
	return total
}

// CustomerDetails are the fields a shopper fills in at checkout.
type CustomerDetails struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone_number" validate:"max=30"`
	CompanyName string `json:"company_name" validate:"max=255"`
	Address     string `json:"address" validate:"required,max=250"`
}
