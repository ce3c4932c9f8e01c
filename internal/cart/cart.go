// Package cart holds the in-memory basket of ticket selections and
// concessions that checkout turns into bookings. Nothing here touches
// storage.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ShowtimeLine is a seat selection for one showtime. Show details are
// copied in so the cart can render without a store.
type ShowtimeLine struct {
	ShowTimeID   uint64
	ShowID       uint64
	ShowTitle    string
	ShowDate     string
	StartTime    string
	Seats        []model.Seat
	PricePerSeat decimal.Decimal
}

// Subtotal is seats x price.
func (l ShowtimeLine) Subtotal() decimal.Decimal {
	return l.PricePerSeat.Mul(decimal.NewFromInt(int64(len(l.Seats))))
}

// ProductLine is a quantity of one concession.
type ProductLine struct {
	ProductID uint64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal is price x quantity.
func (l ProductLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is safe for concurrent use. Lines keep insertion order.
type Cart struct {
	mu       sync.Mutex
	items    []ShowtimeLine
	products []ProductLine
}

func New() *Cart { return &Cart{} }

// AddShowtimeSelection stores line, replacing any existing selection
// for the same showtime rather than merging seats.
func (c *Cart) AddShowtimeSelection(line ShowtimeLine) error {
	if err := validateShowtimeLine(line); err != nil {
		return err
	}
	line.Seats = append([]model.Seat(nil), line.Seats...)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ShowTimeID == line.ShowTimeID {
			c.items[i] = line
			return nil
		}
	}
	c.items = append(c.items, line)
	return nil
}

func validateShowtimeLine(line ShowtimeLine) error {
	if line.ShowTimeID == 0 {
		return model.Invalid("showtime", "is required")
	}
	if len(line.Seats) == 0 {
		return model.Invalid("seats", "select at least one seat")
	}
	if !line.PricePerSeat.IsPositive() {
		return model.Invalid("price", "must be greater than zero")
	}
	seen := make(map[[2]int]bool, len(line.Seats))
	for _, s := range line.Seats {
		k := [2]int{s.Row, s.Col}
		if seen[k] {
			return model.Invalid("seats", "seat "+model.SeatCode(s.Row, s.Col)+" selected twice")
		}
		seen[k] = true
	}
	return nil
}

// RemoveShowtimeSelection drops the selection for a showtime, if any.
func (c *Cart) RemoveShowtimeSelection(showTimeID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ShowTimeID == showTimeID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// AddProduct adds line, summing quantities with an existing line for
// the same product.
func (c *Cart) AddProduct(line ProductLine) error {
	if line.ProductID == 0 {
		return model.Invalid("product", "is required")
	}
	if line.Quantity <= 0 {
		return model.Invalid("quantity", "must be greater than zero")
	}
	if !line.Price.IsPositive() {
		return model.Invalid("price", "must be greater than zero")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ProductID == line.ProductID {
			c.products[i].Quantity += line.Quantity
			return nil
		}
	}
	c.products = append(c.products, line)
	return nil
}

// SetProductQuantity replaces a product's quantity. Zero or less
// removes the line.
func (c *Cart) SetProductQuantity(productID uint64, qty int) {
	if qty <= 0 {
		c.RemoveProduct(productID)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ProductID == productID {
			c.products[i].Quantity = qty
			return
		}
	}
}

// RemoveProduct drops a product line, if any.
func (c *Cart) RemoveProduct(productID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ProductID == productID {
			c.products = append(c.products[:i], c.products[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.products = nil
}

// Items returns a copy of the showtime lines.
func (c *Cart) Items() []ShowtimeLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ShowtimeLine, len(c.items))
	for i, l := range c.items {
		l.Seats = append([]model.Seat(nil), l.Seats...)
		out[i] = l
	}
	return out
}

// Products returns a copy of the product lines.
func (c *Cart) Products() []ProductLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ProductLine(nil), c.products...)
}

// Item returns the selection for a showtime.
func (c *Cart) Item(showTimeID uint64) (ShowtimeLine, bool) {
	for _, l := range c.Items() {
		if l.ShowTimeID == showTimeID {
			return l, true
		}
	}
	return ShowtimeLine{}, false
}

// TotalPrice sums every ticket and product line.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, l := range c.items {
		total = total.Add(l.Subtotal())
	}
	for _, p := range c.products {
		total = total.Add(p.Subtotal())
	}
	return total
}

// ItemCount is the number of seats plus the number of product units.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.items {
		n += len(l.Seats)
	}
	for _, p := range c.products {
		n += p.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines of either kind.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0 && len(c.products) == 0
}
