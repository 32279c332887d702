// Package cart holds the per-visitor shopping cart. A Cart is plain data:
// handlers load it from the visitor's session at the start of a request,
// mutate it, and save it back before answering.
//
// Concurrent requests from the same visitor are not coordinated. Each request
// writes the whole cart blob, so the last save wins.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// Line is the stored state for one product: how many, and the unit price
// captured when the line was created.
type Line struct {
	Quantity int
	Price    decimal.Decimal
}

// Item is a Line joined with the live catalog product.
type Item struct {
	Product  models.Product
	Quantity int
	Price    decimal.Decimal
	Total    decimal.Decimal
}

// MarshalJSON writes prices with two decimal places.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Product  models.Product `json:"product"`
		Quantity int            `json:"quantity"`
		Price    string         `json:"price"`
		Total    string         `json:"total_price"`
	}{i.Product, i.Quantity, i.Price.StringFixed(2), i.Total.StringFixed(2)})
}

// ProductLookup fetches a set of products in a single round trip.
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

// MaxQuantity caps the units held on a single line. It keeps Len within int
// and every line within the order_items.quantity column.
const MaxQuantity = 1000

type Cart struct {
	lines    map[string]Line
	modified bool
	cleared  bool
}

func New() *Cart {
	return &Cart{lines: make(map[string]Line)}
}

// Add puts quantity of product into the cart. Without replace the quantity is
// added to the existing line; with replace it overwrites it. A line that ends
// at zero or below is dropped, and one that would pass MaxQuantity is held at
// MaxQuantity. The price snapshot is taken from product only when the line
// does not exist yet.
func (c *Cart) Add(product models.Product, quantity int, replace bool) {
	key := productKey(product.ID)

	line, exists := c.lines[key]
	if !exists {
		line = Line{Quantity: 0, Price: product.Price}
	}

	quantity = clampQuantity(quantity, -MaxQuantity)
	if replace {
		line.Quantity = quantity
	} else {
		line.Quantity = clampQuantity(line.Quantity+quantity, -MaxQuantity)
	}

	if line.Quantity <= 0 {
		delete(c.lines, key)
	} else {
		c.lines[key] = line
	}
	c.modified = true
}

// Remove drops the line for productID. Removing an absent line is a no-op.
func (c *Cart) Remove(productID int64) {
	key := productKey(productID)
	if _, exists := c.lines[key]; !exists {
		return
	}
	delete(c.lines, key)
	c.modified = true
}

// Clear empties the cart and schedules its session entry for deletion.
func (c *Cart) Clear() {
	c.lines = make(map[string]Line)
	c.cleared = true
	c.modified = true
}

// Len is the total number of units across all stored lines.
func (c *Cart) Len() int {
	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalPrice sums snapshot price times quantity over stored lines. It never
// consults the catalog, so later price changes do not move it.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Line returns the stored line for productID.
func (c *Cart) Line(productID int64) (Line, bool) {
	line, ok := c.lines[productKey(productID)]
	return line, ok
}

// Modified reports whether the cart changed since it was loaded.
func (c *Cart) Modified() bool {
	return c.modified
}

// Items joins the stored lines with their catalog products using one lookup.
// Lines whose product no longer exists are left out. Items come back ordered
// by product id.
func (c *Cart) Items(ctx context.Context, lookup ProductLookup) ([]Item, error) {
	ids := c.productIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	products, err := lookup.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			continue
		}
		line := c.lines[productKey(id)]
		items = append(items, Item{
			Product:  product,
			Quantity: line.Quantity,
			Price:    line.Price,
			Total:    line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	return items, nil
}

// productIDs returns the parsed ids of all lines in ascending order. Keys
// that are not numeric cannot name a product and are skipped.
func (c *Cart) productIDs() []int64 {
	ids := make([]int64, 0, len(c.lines))
	for key := range c.lines {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func clampQuantity(q, floor int) int {
	if q > MaxQuantity {
		return MaxQuantity
	}
	if q < floor {
		return floor
	}
	return q
}

func productKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
