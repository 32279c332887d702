package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bag is the slice of a session the cart needs: keyed JSON values.
type Bag interface {
	Get(key string, dst any) (bool, error)
	Set(key string, value any) error
	Delete(key string)
}

// lineRecord is the session form of a Line. Price travels as a string so the
// decimal value survives the round trip exactly.
type lineRecord struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// Load reads the cart stored under key. A session without a cart yields an
// empty one. Stored quantities above MaxQuantity are held at MaxQuantity.
func Load(bag Bag, key string) (*Cart, error) {
	var records map[string]lineRecord
	found, err := bag.Get(key, &records)
	if err != nil {
		return nil, fmt.Errorf("read cart from session: %w", err)
	}

	c := New()
	if !found {
		return c, nil
	}

	for id, rec := range records {
		if rec.Quantity <= 0 {
			continue
		}
		price, err := decimal.NewFromString(rec.Price)
		if err != nil {
			return nil, fmt.Errorf("cart line %s: invalid price %q: %w", id, rec.Price, err)
		}
		c.lines[id] = Line{Quantity: clampQuantity(rec.Quantity, 1), Price: price}
	}
	return c, nil
}

// Save writes c back under key when it changed. A cleared cart that stayed
// empty removes the key altogether.
func Save(bag Bag, key string, c *Cart) error {
	if !c.modified {
		return nil
	}

	if c.cleared && len(c.lines) == 0 {
		bag.Delete(key)
	} else if err := bag.Set(key, c); err != nil {
		return fmt.Errorf("write cart to session: %w", err)
	}

	c.modified = false
	c.cleared = false
	return nil
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	records := make(map[string]lineRecord, len(c.lines))
	for id, line := range c.lines {
		records[id] = lineRecord{Quantity: line.Quantity, Price: line.Price.String()}
	}
	return json.Marshal(records)
}
