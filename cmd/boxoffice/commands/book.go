package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/theatre-booking/cmd/boxoffice/output"
	"github.com/iliyamo/theatre-booking/internal/app"
	"github.com/iliyamo/theatre-booking/internal/cart"
	"github.com/iliyamo/theatre-booking/internal/model"
)

var extras []string

var bookCmd = &cobra.Command{
	Use:   "book SHOWTIME_ID SEAT...",
	Short: "Book seats for a performance",
	Long: `Book seats for one performance, optionally with snacks and drinks,
and print the ticket.

Examples:
  boxoffice book 3 C4 C5
  boxoffice book 3 C4 --product 1:2 --product 4:1`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return model.Invalid("showtime", "must be a number")
		}
		if err := fillCart(cmd, a, id, args[1:]); err != nil {
			return err
		}

		res, err := a.CheckoutCart(cmd.Context())
		if err != nil {
			return err
		}
		output.Success("Booked! Reference %s, total %s", res.Reference, model.FormatPrice(res.Total))
		for _, t := range res.Tickets {
			fmt.Fprint(output.Out, string(t.Body))
		}
		for _, p := range res.TicketPaths {
			output.Muted("Ticket saved to %s", p)
		}
		return nil
	},
}

func fillCart(cmd *cobra.Command, a *app.App, showTimeID uint64, codes []string) error {
	d, err := a.Catalog.GetShowTime(cmd.Context(), showTimeID)
	if err != nil {
		return err
	}
	seats := make([]model.Seat, 0, len(codes))
	for _, c := range codes {
		s, err := model.ParseSeatCode(c)
		if err != nil {
			return err
		}
		seats = append(seats, s)
	}
	err = a.Cart.AddShowtimeSelection(cart.ShowtimeLine{
		ShowTimeID:   d.ShowTime.ID,
		ShowID:       d.Show.ID,
		ShowTitle:    d.Show.Title,
		ShowDate:     d.ShowTime.ShowDate,
		StartTime:    d.ShowTime.StartTime,
		Seats:        seats,
		PricePerSeat: d.ShowTime.Price,
	})
	if err != nil {
		return err
	}

	for _, e := range extras {
		pid, qty, err := parseExtra(e)
		if err != nil {
			return err
		}
		p, err := a.Catalog.GetProduct(cmd.Context(), pid)
		if err != nil {
			return err
		}
		if err := a.Cart.AddProduct(cart.ProductLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty}); err != nil {
			return err
		}
	}
	return nil
}

// parseExtra reads "ID" or "ID:QTY".
func parseExtra(s string) (uint64, int, error) {
	idPart, qtyPart, hasQty := strings.Cut(s, ":")
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, 0, model.Invalid("product", fmt.Sprintf("malformed %q", s))
	}
	qty := 1
	if hasQty {
		qty, err = strconv.Atoi(qtyPart)
		if err != nil || qty < 1 {
			return 0, 0, model.Invalid("quantity", fmt.Sprintf("malformed %q", s))
		}
	}
	return id, qty, nil
}

func init() {
	bookCmd.Flags().StringArrayVar(&extras, "product", nil, "Add a product as ID or ID:QTY (repeatable)")
	rootCmd.AddCommand(bookCmd)
}
