package commands

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iliyamo/theatre-booking/cmd/boxoffice/output"
	"github.com/iliyamo/theatre-booking/internal/app"
	"github.com/iliyamo/theatre-booking/internal/document"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/service"
)

var (
	// Show flags
	showInput service.ShowInput

	// Showtime flags
	stShowID uint64
	stDate   string
	stTime   string
	stPrice  string

	// Report flags
	fromDate string
	toDate   string
	logsFrom string
	logsTo   string
	export   bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the catalogue and read reports (admin only)",
	Long: `Manage the catalogue and read reports. Log in as an admin first.

Subcommands:
  shows     - List shows with their performance counts
  show      - Add, update or delete a show
  showtime  - Schedule a performance
  report    - Sales report for a date range
  logs      - System log for a date range`,
}

var adminShowsCmd = &cobra.Command{
	Use:   "shows",
	Short: "List shows with their performance counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		list, err := a.Admin.ListShows(cmd.Context(), a.CurrentUser())
		if err != nil {
			return err
		}
		rows := make([][]string, len(list))
		for i, s := range list {
			rows[i] = []string{
				strconv.FormatUint(s.Show.ID, 10),
				s.Show.Title,
				strconv.Itoa(s.Show.DurationMin) + " min",
				strconv.Itoa(s.ShowTimeCount),
			}
		}
		output.Table([]string{"ID", "Title", "Duration", "Performances"}, rows)
		return nil
	},
}

var adminShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Add, update or delete a show",
}

var showAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a show",
	Long: `Add a show.

Examples:
  boxoffice admin show add --title Hamlet --description "Danish drama" --duration 180`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		s, err := a.Admin.CreateShow(cmd.Context(), a.CurrentUser(), showInput)
		if err != nil {
			return err
		}
		output.Success("Added show #%d %s", s.ID, s.Title)
		return nil
	},
}

var showUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace a show's title, description, poster and duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		s, err := a.Admin.UpdateShow(cmd.Context(), a.CurrentUser(), id, showInput)
		if err != nil {
			return err
		}
		output.Success("Updated show #%d %s", s.ID, s.Title)
		return nil
	},
}

var showDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a show with its performances and bookings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		res, err := a.Admin.DeleteShow(cmd.Context(), a.CurrentUser(), id)
		if err != nil {
			return err
		}
		output.Success("Deleted show #%d with %d performance(s) and %d booking(s)", id, res.ShowTimes, res.Bookings)
		return nil
	},
}

var adminShowTimeCmd = &cobra.Command{
	Use:   "showtime",
	Short: "Schedule performances",
}

var showTimeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a performance",
	Long: `Schedule a performance with the standard 8 x 10 seating plan.

Examples:
  boxoffice admin showtime add --show 1 --date 2024-03-15 --time 19:30 --price 14.99`,
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := decimal.NewFromString(stPrice)
		if err != nil {
			return model.Invalid("price", "must be a number")
		}
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		st, err := a.Admin.AddShowTime(cmd.Context(), a.CurrentUser(), service.ShowTimeInput{
			ShowID: stShowID, Date: stDate, StartTime: stTime, Price: price,
		})
		if err != nil {
			return err
		}
		output.Success("Scheduled performance #%d on %s at %s (%s)", st.ID, st.ShowDate, st.StartTime, model.FormatPrice(st.Price))
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Sales report for a date range",
	Long: `Sales report for an inclusive date range, by show and by day.

Examples:
  boxoffice admin report --from 2024-01-01 --to 2024-01-31
  boxoffice admin report --from 2024-01-01 --to 2024-01-31 --export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openAdminApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		rep, err := a.Reports.Sales(cmd.Context(), fromDate, toDate)
		if err != nil {
			return err
		}

		output.Section("Sales " + rep.StartDate + " to " + rep.EndDate)
		output.Info("Revenue %s from %d booking(s), %d ticket(s)",
			model.FormatPrice(rep.Totals.Revenue), rep.Totals.Bookings, rep.Totals.Tickets)
		shows := make([][]string, len(rep.ByShow))
		for i, s := range rep.ByShow {
			shows[i] = []string{s.Title, strconv.Itoa(s.Bookings), strconv.Itoa(s.Tickets), model.FormatPrice(s.Revenue)}
		}
		output.Table([]string{"Show", "Bookings", "Tickets", "Revenue"}, shows)
		days := make([][]string, len(rep.ByDate))
		for i, d := range rep.ByDate {
			days[i] = []string{d.Date, strconv.Itoa(d.Bookings), strconv.Itoa(d.Tickets), model.FormatPrice(d.Revenue)}
		}
		output.Table([]string{"Date", "Bookings", "Tickets", "Revenue"}, days)

		if export {
			doc, err := a.Documents.SalesReport(service.SalesRecord(rep))
			return save(a, doc, err)
		}
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "System log for a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openAdminApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		entries, err := a.Reports.Logs(cmd.Context(), logsFrom, logsTo)
		if err != nil {
			return err
		}
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{
				e.CreatedAt.UTC().Format(model.TimestampLayout),
				e.Username,
				e.Action,
				e.Details,
			}
		}
		output.Table([]string{"Time", "User", "Action", "Details"}, rows)

		if export {
			doc, err := a.Documents.LogExport(service.LogRecord(logsFrom, logsTo, entries))
			return save(a, doc, err)
		}
		return nil
	},
}

// openAdminApp is openApp for commands whose service does not check the
// actor itself.
func openAdminApp(cmd *cobra.Command) (*app.App, error) {
	a, err := openApp(cmd)
	if err != nil {
		return nil, err
	}
	u := a.CurrentUser()
	switch {
	case u == nil:
		err = model.ErrAuthenticationRequired
	case u.Role != model.RoleAdmin:
		err = model.ErrForbidden
	}
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func save(a *app.App, doc document.Document, err error) error {
	if err != nil {
		return err
	}
	path, err := a.Exporter.Save(doc)
	if err != nil {
		return err
	}
	output.Success("Exported to %s", path)
	return nil
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, model.Invalid("id", "must be a positive number")
	}
	return id, nil
}

func init() {
	for _, c := range []*cobra.Command{showAddCmd, showUpdateCmd} {
		c.Flags().StringVar(&showInput.Title, "title", "", "Title")
		c.Flags().StringVar(&showInput.Description, "description", "", "Description")
		c.Flags().StringVar(&showInput.Poster, "poster", "", "Poster image path")
		c.Flags().IntVar(&showInput.DurationMin, "duration", 0, "Running time in minutes")
	}

	showTimeAddCmd.Flags().Uint64Var(&stShowID, "show", 0, "Show ID")
	showTimeAddCmd.Flags().StringVar(&stDate, "date", "", "Date (YYYY-MM-DD)")
	showTimeAddCmd.Flags().StringVar(&stTime, "time", "", "Start time (HH:MM)")
	showTimeAddCmd.Flags().StringVar(&stPrice, "price", "", "Seat price")

	day := func(offset int) string { return time.Now().AddDate(0, 0, offset).Format(model.DateLayout) }
	reportCmd.Flags().StringVar(&fromDate, "from", day(-30), "First day (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&toDate, "to", day(0), "Last day (YYYY-MM-DD)")
	logsCmd.Flags().StringVar(&logsFrom, "from", day(-7), "First day (YYYY-MM-DD)")
	logsCmd.Flags().StringVar(&logsTo, "to", day(0), "Last day (YYYY-MM-DD)")
	for _, c := range []*cobra.Command{reportCmd, logsCmd} {
		c.Flags().BoolVar(&export, "export", false, "Also save the document under EXPORT_DIR")
	}

	adminShowCmd.AddCommand(showAddCmd, showUpdateCmd, showDeleteCmd)
	adminShowTimeCmd.AddCommand(showTimeAddCmd)
	adminCmd.AddCommand(adminShowsCmd, adminShowCmd, adminShowTimeCmd, reportCmd, logsCmd)
	rootCmd.AddCommand(adminCmd)
}
