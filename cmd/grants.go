package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/equityledger/captable"
	"github.com/equityledger/captable/renderer"
	"github.com/google/subcommands"
)

// --- Pool Command ---

type poolCmd struct {
	class string
	total float64
}

func (*poolCmd) Name() string     { return "pool" }
func (*poolCmd) Synopsis() string { return "create the option pool and its grant book" }
func (*poolCmd) Usage() string {
	return `pool -class <class> -total <count>

  Creates the grant book file with an option pool reserving shares of a
  declared class. Run this once before granting.
`
}

func (c *poolCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.class, "class", "", "Share class the pool reserves, declared in the ledger")
	f.Float64Var(&c.total, "total", 0, "Number of shares reserved")
}

func (c *poolCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.class == "" || c.total <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(*grantsFile); !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: grant book %q already exists\n", *grantsFile)
		return subcommands.ExitFailure
	}

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if ledger.Class(c.class) == nil {
		fmt.Fprintf(os.Stderr, "Error: share class %q is not declared in the ledger\n", c.class)
		return subcommands.ExitFailure
	}

	book := captable.NewGrantBook(captable.Pool{Class: c.class, Total: captable.Q(c.total)})
	if status := SaveGrantBook(book); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Created grant book %s with a pool of %s %s shares\n", *grantsFile, book.Pool().Total, c.class)
	return subcommands.ExitSuccess
}

// --- Grant Command ---

type grantCmd struct {
	grantee      string
	kind         string
	shares       float64
	price        float64
	start        string
	months       int
	cliff        int
	expires      string
	acceleration string
}

func (*grantCmd) Name() string     { return "grant" }
func (*grantCmd) Synopsis() string { return "draft a new equity grant drawing on the pool" }
func (*grantCmd) Usage() string {
	return `grant -grantee <name> -shares <count> [-kind <kind>] [-price <price>] [-start <date>] [-months <n>] [-cliff <n>] [-expires <date>]

  Drafts a grant. The grant reserves pool shares immediately but vests
  nothing until approved.
`
}

func (c *grantCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.grantee, "grantee", "", "Employee receiving the grant")
	f.StringVar(&c.kind, "kind", "iso", "Grant kind: iso, nso, rsu, rsa, sar or phantom")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares granted")
	f.Float64Var(&c.price, "price", 0, "Exercise price per share, in the ledger currency")
	f.StringVar(&c.start, "start", captable.Today().String(), "Vesting start date (YYYY-MM-DD)")
	f.IntVar(&c.months, "months", 48, "Vesting duration in months")
	f.IntVar(&c.cliff, "cliff", 12, "Cliff duration in months")
	f.StringVar(&c.expires, "expires", "", "Optional expiration date (YYYY-MM-DD)")
	f.StringVar(&c.acceleration, "acceleration", "", "Optional acceleration terms, free form")
}

func (c *grantCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.grantee == "" || c.shares <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	start, err := captable.ParseDate(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	var expires captable.Date
	if c.expires != "" {
		expires, err = captable.ParseDate(c.expires)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing expiration date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	kind, err := captable.ParseGrantKind(c.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	book, err := DecodeGrantBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	terms := captable.VestingTerms{Start: start, Months: c.months, CliffMonths: c.cliff}
	g, err := book.NewGrant(c.grantee, kind, captable.Q(c.shares), captable.M(c.price, ledger.Currency()), terms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating grant: %v\n", err)
		return subcommands.ExitFailure
	}
	g.Expiration = expires
	g.Acceleration = c.acceleration

	if status := SaveGrantBook(book); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Drafted grant %s: %s %s shares for %s (%s available in pool)\n",
		g.ID, g.Total, g.Class, g.Grantee, book.Available())
	return subcommands.ExitSuccess
}

// --- Approve Command ---

type approveCmd struct {
	id   string
	date string
}

func (*approveCmd) Name() string     { return "approve" }
func (*approveCmd) Synopsis() string { return "approve a draft grant and generate its vesting schedule" }
func (*approveCmd) Usage() string {
	return `approve -id <grant>

  Approves a draft grant. The full vesting schedule is generated up
  front; vesting then accrues by the calendar.
`
}

func (c *approveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Grant id")
	f.StringVar(&c.date, "d", captable.Today().String(), "Date the vesting is refreshed on")
}

func (c *approveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	book, err := DecodeGrantBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	g, err := book.Grant(c.id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := g.Approve(); err != nil {
		fmt.Fprintf(os.Stderr, "Error approving grant: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := g.RecomputeVesting(on); err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing vesting: %v\n", err)
		return subcommands.ExitFailure
	}

	if status := SaveGrantBook(book); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Approved grant %s: %s vested of %s on %s\n", g.ID, g.Vested, g.Total, on)
	return subcommands.ExitSuccess
}

// --- Vesting Command ---

type vestingCmd struct {
	id     string
	date   string
	asJSON bool
}

func (*vestingCmd) Name() string     { return "vesting" }
func (*vestingCmd) Synopsis() string { return "display the pool summary or one grant's vesting" }
func (*vestingCmd) Usage() string {
	return `vesting [-id <grant>] [-d <date>] [-json]

  Without -id, displays the option pool accounting and all grants. With
  -id, refreshes and displays one grant's vesting schedule.
`
}

func (c *vestingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Grant id; empty for the pool summary")
	f.StringVar(&c.date, "d", captable.Today().String(), "Date the vesting is computed on")
	f.BoolVar(&c.asJSON, "json", false, "Print the report as JSON instead of markdown")
}

func (c *vestingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	book, err := DecodeGrantBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.id == "" {
		view := renderer.NewPoolSummary(book)
		if ledger, err := DecodeLedger(); err == nil && ledger.TotalIssued(on).IsPositive() {
			view.PercentOfCompany = book.PercentOfCompany(ledger, on)
		}
		if c.asJSON {
			return printJSON(view)
		}
		printMarkdown(renderer.RenderPoolSummary(view))
		return subcommands.ExitSuccess
	}

	g, err := book.Grant(c.id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := g.RecomputeVesting(on); err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing vesting: %v\n", err)
		return subcommands.ExitFailure
	}
	if status := SaveGrantBook(book); status != subcommands.ExitSuccess {
		return status
	}

	view := renderer.NewGrantVesting(g)
	if c.asJSON {
		return printJSON(view)
	}
	printMarkdown(renderer.RenderGrantVesting(view))
	return subcommands.ExitSuccess
}

// --- Exercise Command ---

type exerciseCmd struct {
	id     string
	date   string
	shares float64
	memo   string
}

func (*exerciseCmd) Name() string     { return "exercise" }
func (*exerciseCmd) Synopsis() string { return "exercise vested shares of a grant" }
func (*exerciseCmd) Usage() string {
	return `exercise -id <grant> -shares <count> [-d <date>]

  Records an exercise on the grant book and appends the matching
  exercise entry to the ledger, so the shares appear on the cap table.
`
}

func (c *exerciseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Grant id")
	f.StringVar(&c.date, "d", captable.Today().String(), "Exercise date (YYYY-MM-DD)")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares exercised")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *exerciseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || c.shares <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	book, err := DecodeGrantBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	g, err := book.Grant(c.id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := g.RecomputeVesting(on); err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing vesting: %v\n", err)
		return subcommands.ExitFailure
	}
	event, err := g.RecordExercise(on, captable.Q(c.shares))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exercising grant: %v\n", err)
		return subcommands.ExitFailure
	}

	// The ledger entry is appended first: if it does not validate, the grant
	// book is left untouched.
	entry := captable.NewExercise(on, c.memo, g.Grantee, captable.HolderEmployee, g.Class, event.Shares, event.Price, g.ID)
	if status := AppendEntry(entry); status != subcommands.ExitSuccess {
		return status
	}
	if status := SaveGrantBook(book); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Exercised %s shares of grant %s for %s (%s still exercisable)\n",
		event.Shares, g.ID, event.Cost, g.Exercisable())
	return subcommands.ExitSuccess
}

// --- Cancel Grant Command ---

type cancelGrantCmd struct {
	id string
}

func (*cancelGrantCmd) Name() string     { return "cancel-grant" }
func (*cancelGrantCmd) Synopsis() string { return "cancel a grant and release its shares to the pool" }
func (*cancelGrantCmd) Usage() string {
	return `cancel-grant -id <grant>

  Cancels a grant irreversibly, e.g. on termination. Unexercised shares
  return to the pool; exercised shares stay on the cap table.
`
}

func (c *cancelGrantCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Grant id")
}

func (c *cancelGrantCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	book, err := DecodeGrantBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	g, err := book.Grant(c.id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	freed, err := g.CancelGrant()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error cancelling grant: %v\n", err)
		return subcommands.ExitFailure
	}

	if status := SaveGrantBook(book); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Cancelled grant %s, released %s shares back to the pool (%s available)\n",
		g.ID, freed, book.Available())
	return subcommands.ExitSuccess
}
