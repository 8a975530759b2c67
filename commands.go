package main

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"library-catalog/library"
)

const version = "0.1.0"

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	configFile string
	jsonMode   bool
	settings   settings
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "library",
		Short: "In-memory library catalog",
		Long: `library runs circulation scenarios against an in-memory catalog of
branches, books and ebooks, and computes overdue fines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(c.configFile)
			if err != nil {
				return err
			}
			c.settings, err = resolveSettings(v)
			return err
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./library.yaml)")
	root.PersistentFlags().BoolVar(&c.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(c.newDemoCmd())
	root.AddCommand(c.newFineCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "library v%s\n", version)
			return nil
		},
	}
}

// ------------------ demo ------------------

func (c *cli) newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the sample circulation scenario",
		Long: `Demo registers two branches and two books, lets a patron borrow and
rate them, lists the catalog, bills three overdue days and returns a book.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDemo(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// jsonRecorder writes each event as one JSON object per line. Encode and
// write failures go to errW.
type jsonRecorder struct {
	w    io.Writer
	errW io.Writer
}

type eventJSON struct {
	ID         string               `json:"id"`
	Type       library.EventType    `json:"type"`
	OccurredAt time.Time            `json:"occurred_at"`
	Payload    library.EventPayload `json:"payload"`
}

func (r jsonRecorder) Record(e library.Event) {
	line, err := jsoniter.ConfigFastest.Marshal(eventJSON{
		ID:         e.ID.String(),
		Type:       e.Type,
		OccurredAt: e.OccurredAt,
		Payload:    e.Payload(),
	})
	if err != nil {
		fmt.Fprintf(r.errW, "encode event: %v\n", err)
		return
	}
	if _, err := fmt.Fprintln(r.w, string(line)); err != nil {
		fmt.Fprintf(r.errW, "write event: %v\n", err)
	}
}

func (c *cli) runDemo(out, errOut io.Writer) error {
	logger := newLogger(errOut, c.settings)

	var console library.Recorder = library.NewWriterRecorder(out)
	if c.jsonMode {
		console = jsonRecorder{w: out, errW: errOut}
	}

	mgr, err := library.NewLibraryManager(c.settings.managerOptions(logger, console))
	if err != nil {
		return fmt.Errorf("create library: %w", err)
	}
	defer mgr.Close()

	mainBranch := mgr.AddBranch("Main Branch", "Downtown")
	eastBranch := mgr.AddBranch("East Side Branch", "Eastville")

	book := mgr.AddPhysicalBook("1984", "George Orwell", "123456789", "Dystopian")
	ebook := mgr.AddElectronicBook("Digital Fortress", "Dan Brown", "1122334455", "Thriller", 5)
	mgr.PlaceItem(book, mainBranch)
	mgr.PlaceItem(ebook, eastBranch)

	customer := mgr.NewPatron("John Doe", 30, "C001")
	if err := customer.Borrow(book, mainBranch); err != nil {
		return err
	}
	if err := customer.Borrow(ebook, eastBranch); err != nil {
		return err
	}
	if err := customer.Rate(book, 5); err != nil {
		return err
	}

	invoice := mgr.Invoice(customer, []library.Item{book, ebook}, 3)

	if c.jsonMode {
		if err := customer.ReturnItem(book, mainBranch); err != nil {
			return err
		}
		return writeJSON(out, demoSummary{
			Items:      collect(mgr),
			Invoice:    invoice,
			TotalItems: mgr.TotalItems(),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Items in the Library:")
	for line := range mgr.ListItems() {
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out, invoice)

	if err := customer.ReturnItem(book, mainBranch); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Total items in the library:", mgr.TotalItems())
	return nil
}

type demoSummary struct {
	Items      []string        `json:"items"`
	Invoice    library.Invoice `json:"invoice"`
	TotalItems int             `json:"total_items"`
}

func collect(mgr *library.LibraryManager) []string {
	var out []string
	for line := range mgr.ListItems() {
		out = append(out, line)
	}
	return out
}

// ------------------ fine ------------------

func (c *cli) newFineCmd() *cobra.Command {
	var (
		days     int
		items    int
		due      string
		returned string
	)
	cmd := &cobra.Command{
		Use:   "fine",
		Short: "Compute the overdue fine for a number of items",
		Long: `Fine multiplies overdue days by the daily rate and the number of items.
Days come from --days, or from --due and --returned (YYYY-MM-DD); any
started day counts.`,
		Example: `  library fine --days 3 --items 2
  library fine --due 2024-03-01 --returned 2024-03-04 --items 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if due != "" || returned != "" {
				d, err := overdueFromDates(due, returned)
				if err != nil {
					return err
				}
				days = d
			}
			if items < 0 {
				return fmt.Errorf("--items must not be negative")
			}

			fine := library.NewBillingCalculator(c.settings.DailyRate).FineFor(days, items)

			out := cmd.OutOrStdout()
			if c.jsonMode {
				return writeJSON(out, map[string]any{
					"overdue_days": days,
					"items":        items,
					"daily_rate":   int64(library.NewBillingCalculator(c.settings.DailyRate).DailyRate()),
					"fine":         int64(fine),
				})
			}
			fmt.Fprintf(out, "Fine for %d item(s), %d day(s) overdue: %s\n", items, days, fine)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "overdue days")
	cmd.Flags().IntVar(&items, "items", 1, "number of overdue items")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&returned, "returned", "", "return date (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("days", "due")
	cmd.MarkFlagsRequiredTogether("due", "returned")
	return cmd
}

func overdueFromDates(due, returned string) (int, error) {
	const layout = "2006-01-02"
	d, err := time.Parse(layout, due)
	if err != nil {
		return 0, fmt.Errorf("parse --due: %w", err)
	}
	r, err := time.Parse(layout, returned)
	if err != nil {
		return 0, fmt.Errorf("parse --returned: %w", err)
	}
	return library.OverdueDays(d, r), nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
