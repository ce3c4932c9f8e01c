package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/iliyamo/theatre-booking/internal/cart"
	"github.com/iliyamo/theatre-booking/internal/model"
)

// showTimeItem is one performance in the Shows tab.
type showTimeItem struct {
	show model.Show
	st   model.ShowTime
}

func (i showTimeItem) FilterValue() string { return i.show.Title }
func (i showTimeItem) Title() string {
	return fmt.Sprintf("%s  %s %s", i.show.Title, i.st.ShowDate, i.st.StartTime)
}
func (i showTimeItem) Description() string {
	return fmt.Sprintf("%s per seat · %d seats free · %d min", model.FormatPrice(i.st.Price), i.st.SeatingMap.Available(), i.show.DurationMin)
}

type productItem struct{ p model.Product }

func (i productItem) FilterValue() string { return i.p.Name }
func (i productItem) Title() string       { return i.p.Name }
func (i productItem) Description() string {
	return fmt.Sprintf("%s · %s", i.p.Type, model.FormatPrice(i.p.Price))
}

// cartItem is either a performance line or a product line.
type cartItem struct {
	showTime *cart.ShowtimeLine
	product  *cart.ProductLine
}

func (i cartItem) FilterValue() string { return i.Title() }
func (i cartItem) Title() string {
	if i.showTime != nil {
		return fmt.Sprintf("%s  %s %s", i.showTime.ShowTitle, i.showTime.ShowDate, i.showTime.StartTime)
	}
	return fmt.Sprintf("%s x%d", i.product.Name, i.product.Quantity)
}
func (i cartItem) Description() string {
	if i.showTime != nil {
		return fmt.Sprintf("Seats %s · %s", strings.Join(model.SeatCodes(i.showTime.Seats), ", "), model.FormatPrice(i.showTime.Subtotal()))
	}
	return fmt.Sprintf("%s each · %s", model.FormatPrice(i.product.Price), model.FormatPrice(i.product.Subtotal()))
}

type bookingItem struct{ b model.BookingDetail }

func (i bookingItem) FilterValue() string { return i.b.ShowTitle }
func (i bookingItem) Title() string {
	return fmt.Sprintf("#%d %s  %s %s", i.b.ID, i.b.ShowTitle, i.b.ShowDate, i.b.StartTime)
}
func (i bookingItem) Description() string {
	return fmt.Sprintf("Seats %s · %s · %s", strings.Join(model.SeatCodes(i.b.Seats), ", "), model.FormatPrice(i.b.TotalPrice), i.b.Status)
}

func cartItems(c *cart.Cart) []list.Item {
	var items []list.Item
	for _, it := range c.Items() {
		items = append(items, cartItem{showTime: &it})
	}
	for _, p := range c.Products() {
		items = append(items, cartItem{product: &p})
	}
	return items
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}
