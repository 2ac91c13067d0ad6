package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"expenses/internal/core"
	"expenses/internal/export"
	"expenses/internal/form"
	gsheet "expenses/internal/sheets/google"
	"expenses/internal/store"
	"expenses/internal/view"
)

// Env carries what every command needs. Open is called once per command and
// the returned store is closed when the command returns.
type Env struct {
	Open            func(context.Context) (*store.Store, error)
	Out             io.Writer
	Err             io.Writer
	Now             func() time.Time
	Currency        string
	DateLayout      string
	DefaultCategory string

	OAuthClientFile string
	OAuthTokenFile  string
}

// Register adds every expenses-cli command to commander.
func Register(commander *subcommands.Commander, env *Env) {
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&listCmd{env: env}, "records")
	commander.Register(&addCmd{env: env}, "records")
	commander.Register(&rmCmd{env: env}, "records")
	commander.Register(&summaryCmd{env: env}, "reports")
	commander.Register(&exportCmd{env: env}, "reports")
	commander.Register(&sheetsAuthCmd{env: env}, "setup")
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) errorf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// withStore opens the store, runs fn and closes it.
func (e *Env) withStore(ctx context.Context, fn func(*store.Store) subcommands.ExitStatus) subcommands.ExitStatus {
	st, err := e.Open(ctx)
	if err != nil {
		return e.errorf("opening store: %v", err)
	}
	defer st.Close()
	return fn(st)
}

// --- listCmd ---

type listCmd struct {
	env   *Env
	month string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "prints the expenses, newest first" }
func (*listCmd) Usage() string {
	return `list [-month YYYY-MM]

Prints one line per expense sorted by date, newest first.
`
}
func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "Only print expenses dated in this month (YYYY-MM).")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var key core.MonthKey
	if c.month != "" {
		k, err := core.ParseMonthKey(c.month)
		if err != nil {
			fmt.Fprintf(c.env.Err, "Error: invalid -month %q\n", c.month)
			return subcommands.ExitUsageError
		}
		key = k
	}

	return c.env.withStore(ctx, func(st *store.Store) subcommands.ExitStatus {
		tw := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT")
		for _, e := range view.SortByDateDesc(st.All()) {
			if c.month != "" && (e.Date.IsZero() || core.MonthOf(e.Date.Time) != key) {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, c.env.formatDate(e.Date), e.Title, e.Category,
				core.FormatAmount(e.Amount.Value, c.env.Currency))
		}
		if err := tw.Flush(); err != nil {
			return c.env.errorf("%v", err)
		}
		return subcommands.ExitSuccess
	})
}

func (e *Env) formatDate(d core.Date) string {
	if d.IsZero() {
		return "-"
	}
	layout := e.DateLayout
	if layout == "" {
		layout = core.DateLayout
	}
	return d.Format(layout)
}

// --- addCmd ---

type addCmd struct {
	env      *Env
	title    string
	amount   string
	date     string
	category string
	notes    string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "records a new expense" }
func (*addCmd) Usage() string {
	return `add -title <title> -amount <amount> [-date YYYY-MM-DD] [-category <category>] [-notes <notes>]

Validates the fields the same way the web form does and appends the expense.
`
}
func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", "", "What the money was spent on.")
	f.StringVar(&c.amount, "amount", "", "The amount, dot or comma decimal separator.")
	f.StringVar(&c.date, "date", "", "The day of the expense. Defaults to today.")
	f.StringVar(&c.category, "category", "", "The category. Defaults to the configured default category.")
	f.StringVar(&c.notes, "notes", "", "Free text notes.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := form.Input{
		Title:    c.title,
		Amount:   c.amount,
		Date:     c.date,
		Category: c.category,
		Notes:    c.notes,
	}
	if strings.TrimSpace(in.Date) == "" {
		in.Date = c.env.now().Format(core.DateLayout)
	}

	return c.env.withStore(ctx, func(st *store.Store) subcommands.ExitStatus {
		opts := []form.Option{form.WithClock(c.env.now)}
		if c.env.DefaultCategory != "" {
			opts = append(opts, form.WithDefaultCategory(c.env.DefaultCategory))
		}
		res, err := form.NewController(st, opts...).Submit(ctx, in)
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(c.env.Err, "Error: please enter valid %s\n", strings.Join(verr.Fields, ", "))
			return subcommands.ExitUsageError
		}
		if err != nil {
			return c.env.errorf("saving expense: %v", err)
		}
		fmt.Fprintf(c.env.Out, "Added %s\n", res.Expense.ID)
		return subcommands.ExitSuccess
	})
}

// --- rmCmd ---

type rmCmd struct {
	env *Env
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "deletes expenses by id" }
func (*rmCmd) Usage() string {
	return `rm <id>...

Deletes every listed expense. Unknown ids are reported and skipped.
`
}
func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(c.env.Err, "Error: at least one id is required.")
		return subcommands.ExitUsageError
	}

	return c.env.withStore(ctx, func(st *store.Store) subcommands.ExitStatus {
		status := subcommands.ExitSuccess
		for _, id := range f.Args() {
			removed, err := st.Remove(ctx, id)
			if err != nil {
				return c.env.errorf("deleting %s: %v", id, err)
			}
			if !removed {
				fmt.Fprintf(c.env.Err, "No expense with id %s\n", id)
				status = subcommands.ExitFailure
				continue
			}
			fmt.Fprintf(c.env.Out, "Deleted %s\n", id)
		}
		return status
	})
}

// --- summaryCmd ---

type summaryCmd struct {
	env *Env
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "prints the total, this month's total and the count" }
func (*summaryCmd) Usage() string {
	return `summary

Prints the same figures as the summary card of the web page.
`
}
func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withStore(ctx, func(st *store.Store) subcommands.ExitStatus {
		sum := core.Summarize(st.All(), c.env.now())
		fmt.Fprintf(c.env.Out, "Total:      %s\n", core.FormatAmount(sum.Total, c.env.Currency))
		fmt.Fprintf(c.env.Out, "This month: %s\n", core.FormatAmount(sum.Monthly, c.env.Currency))
		fmt.Fprintf(c.env.Out, "Count:      %d\n", sum.Count)
		return subcommands.ExitSuccess
	})
}

// --- exportCmd ---

type exportCmd struct {
	env *Env
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "writes every expense as CSV" }
func (*exportCmd) Usage() string {
	return `export [-o expenses.csv]

Writes the CSV download of the web page to a file, or to stdout when -o is "-".
`
}
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "-", "The destination file, - for stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withStore(ctx, func(st *store.Store) subcommands.ExitStatus {
		data, err := export.CSV(st.All())
		if errors.Is(err, export.ErrNothingToExport) {
			return c.env.errorf("nothing to export")
		}
		if err != nil {
			return c.env.errorf("%v", err)
		}

		if c.out == "" || c.out == "-" {
			if _, err := c.env.Out.Write(data); err != nil {
				return c.env.errorf("%v", err)
			}
			fmt.Fprintln(c.env.Out)
			return subcommands.ExitSuccess
		}
		if err := os.WriteFile(c.out, data, 0o644); err != nil {
			return c.env.errorf("writing %s: %v", c.out, err)
		}
		fmt.Fprintf(c.env.Err, "Exported %d expenses to %s\n", st.Len(), c.out)
		return subcommands.ExitSuccess
	})
}

// --- sheetsAuthCmd ---

type sheetsAuthCmd struct {
	env        *Env
	clientFile string
	tokenFile  string
	port       string
}

func (*sheetsAuthCmd) Name() string     { return "sheets-auth" }
func (*sheetsAuthCmd) Synopsis() string { return "authorizes the Google Sheets mirror as a user" }
func (*sheetsAuthCmd) Usage() string {
	return `sheets-auth -client <client_secret.json> [-token token.json] [-port 8085]

Runs the OAuth consent flow and saves the token the sheets mirror reads from
GOOGLE_OAUTH_TOKEN_FILE. http://localhost:<port>/callback must be an
authorized redirect URI of the client.
`
}
func (c *sheetsAuthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.clientFile, "client", c.env.OAuthClientFile, "The OAuth client secret file.")
	f.StringVar(&c.tokenFile, "token", c.env.OAuthTokenFile, "Where to write the token.")
	f.StringVar(&c.port, "port", gsheet.DefaultCallbackPort, "The local port of the redirect URI.")
}

func (c *sheetsAuthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.clientFile == "" || c.tokenFile == "" {
		fmt.Fprintln(c.env.Err, "Error: -client and -token are required.")
		return subcommands.ExitUsageError
	}
	clientJSON, err := os.ReadFile(c.clientFile)
	if err != nil {
		return c.env.errorf("reading client file: %v", err)
	}
	oauthCfg, err := gsheet.OAuthConfig(clientJSON, c.port)
	if err != nil {
		return c.env.errorf("%v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	tok, err := gsheet.Authorize(ctx, oauthCfg, c.env.Out)
	if err != nil {
		return c.env.errorf("%v", err)
	}
	if err := gsheet.SaveToken(c.tokenFile, tok); err != nil {
		return c.env.errorf("%v", err)
	}
	fmt.Fprintf(c.env.Out, "Saved token to %s\n", c.tokenFile)
	return subcommands.ExitSuccess
}
