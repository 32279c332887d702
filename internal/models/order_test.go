package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_TotalCost(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{Price: decimal.RequireFromString("10.00"), Quantity: 2},
			{Price: decimal.RequireFromString("5.50"), Quantity: 1},
		},
	}

	assert.True(t, order.TotalCost().Equal(decimal.RequireFromString("25.50")))
}

func TestOrder_TotalCostEmpty(t *testing.T) {
	order := &Order{}

	assert.True(t, order.TotalCost().IsZero())
}

func TestProduct_DisplayName(t *testing.T) {
	assert.Equal(t, "Door hinge", Product{Description: "Door hinge", OrderCode: "EN-1"}.DisplayName())
	assert.Equal(t, "EN-1", Product{OrderCode: "EN-1"}.DisplayName())
}

func TestMoneyMarshalsWithTwoDecimals(t *testing.T) {
	raw, err := json.Marshal(OrderItem{
		ProductID: 1,
		Product:   &Product{ID: 1, OrderCode: "EN-1", Price: decimal.RequireFromString("10")},
		Price:     decimal.RequireFromString("5.5"),
		Quantity:  2,
	})
	require.NoError(t, err)

	var got struct {
		Price    string `json:"price"`
		Quantity int    `json:"quantity"`
		Product  struct {
			OrderCode string `json:"order_code"`
			Price     string `json:"price"`
		} `json:"product"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "5.50", got.Price)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, "EN-1", got.Product.OrderCode)
	assert.Equal(t, "10.00", got.Product.Price)
}
