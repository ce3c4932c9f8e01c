package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/theatre-booking/cmd/boxoffice/output"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/service"
)

var showDate string

var showsCmd = &cobra.Command{
	Use:   "shows",
	Short: "List shows and their performances",
	Long: `List shows and their performances.

Examples:
  boxoffice shows                     # everything scheduled
  boxoffice shows --date 2024-03-10   # one day only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		listing, err := a.Catalog.ListShows(cmd.Context(), showDate)
		if err != nil {
			return err
		}
		var rows [][]string
		for _, sh := range listing.Shows {
			for _, st := range sh.ShowTimes {
				rows = append(rows, []string{
					strconv.FormatUint(st.ID, 10),
					sh.Show.Title,
					st.ShowDate,
					st.StartTime,
					model.FormatPrice(st.Price),
					strconv.Itoa(st.SeatingMap.Available()),
				})
			}
		}
		output.Section("Performances")
		output.Table([]string{"ID", "Show", "Date", "Time", "Price", "Free"}, rows)
		output.Muted("Dates: %s", strings.Join(listing.Dates, ", "))
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List snacks and drinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		products, err := a.Catalog.ListProducts(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, len(products))
		for i, p := range products {
			rows[i] = []string{strconv.FormatUint(p.ID, 10), p.Name, string(p.Type), model.FormatPrice(p.Price)}
		}
		output.Table([]string{"ID", "Name", "Type", "Price"}, rows)
		return nil
	},
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List your bookings, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		u := a.CurrentUser()
		if u == nil {
			return model.ErrAuthenticationRequired
		}
		list, err := a.Catalog.ListUserBookings(cmd.Context(), u.ID)
		if err != nil {
			return err
		}
		rows := make([][]string, len(list))
		for i, b := range list {
			rows[i] = []string{
				strconv.FormatUint(b.ID, 10),
				b.ShowTitle,
				b.ShowDate + " " + b.StartTime,
				strings.Join(model.SeatCodes(b.Seats), ","),
				model.FormatPrice(b.TotalPrice),
				b.Status,
			}
		}
		output.Table([]string{"ID", "Show", "When", "Seats", "Total", "Status"}, rows)
		return nil
	},
}

func init() {
	showsCmd.Flags().StringVarP(&showDate, "date", "d", service.AllDates, "Only this date (YYYY-MM-DD)")
	rootCmd.AddCommand(showsCmd, productsCmd, bookingsCmd)
}
