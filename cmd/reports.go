package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/equityledger/captable"
	"github.com/equityledger/captable/renderer"
	"github.com/google/subcommands"
)

// printJSON writes any renderer view as indented JSON on stdout.
func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// --- Ownership Command ---

type ownershipCmd struct {
	date   string
	asJSON bool
}

func (*ownershipCmd) Name() string     { return "ownership" }
func (*ownershipCmd) Synopsis() string { return "display the cap table on a given date" }
func (*ownershipCmd) Usage() string {
	return `ownership [-d <date>] [-json]

  Displays the ownership breakdown per holder, per class and per holder
  kind, with fully diluted percentages.
`
}

func (c *ownershipCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Date for the report. See 'topic dates' for supported formats.")
	f.BoolVar(&c.asJSON, "json", false, "Print the report as JSON instead of markdown")
}

func (c *ownershipCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	view := renderer.NewOwnership(ledger.NewOwnershipReport(on))
	if c.asJSON {
		return printJSON(view)
	}
	printMarkdown(renderer.RenderOwnership(view))
	return subcommands.ExitSuccess
}

// --- Waterfall Command ---

type waterfallCmd struct {
	date      string
	valuation float64
	asJSON    bool
}

func (*waterfallCmd) Name() string     { return "waterfall" }
func (*waterfallCmd) Synopsis() string { return "distribute an exit valuation over the cap table" }
func (*waterfallCmd) Usage() string {
	return `waterfall -valuation <amount> [-d <date>] [-json]

  Runs the exit waterfall: liquidation preferences first, by seniority,
  then the residual pro rata over participating shares.
`
}

func (c *waterfallCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Date for the report. See 'topic dates' for supported formats.")
	f.Float64Var(&c.valuation, "valuation", 0, "Exit valuation, in the ledger currency")
	f.BoolVar(&c.asJSON, "json", false, "Print the report as JSON instead of markdown")
}

func (c *waterfallCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.valuation <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := ledger.NewWaterfallReport(on, captable.M(c.valuation, ledger.Currency()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating waterfall report: %v\n", err)
		return subcommands.ExitFailure
	}

	view := renderer.NewWaterfall(report)
	if c.asJSON {
		return printJSON(view)
	}
	printMarkdown(renderer.RenderWaterfall(view))
	return subcommands.ExitSuccess
}

// --- Simulate Command ---

type simulateCmd struct {
	date       string
	name       string
	investment float64
	preMoney   float64
	class      string
	poolTopUp  float64
	asJSON     bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "simulate a funding round and its dilution" }
func (*simulateCmd) Usage() string {
	return `simulate -investment <amount> -pre-money <amount> [-name <round>] [-class <class>] [-pool-top-up <percent>] [-d <date>] [-json]

  Projects the capitalization after a proposed round without writing
  anything to the ledger.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Date the round is priced on")
	f.StringVar(&c.name, "name", "", "Optional round name, e.g. 'series-a'")
	f.Float64Var(&c.investment, "investment", 0, "New money invested, in the ledger currency")
	f.Float64Var(&c.preMoney, "pre-money", 0, "Pre-money valuation, in the ledger currency")
	f.StringVar(&c.class, "class", "", "Share class the round issues into, optional")
	f.Float64Var(&c.poolTopUp, "pool-top-up", 0, "Option pool top-up as a percent of the post-money share count")
	f.BoolVar(&c.asJSON, "json", false, "Print the report as JSON instead of markdown")
}

func (c *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.investment <= 0 || c.preMoney <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	terms := captable.RoundTerms{
		Name:             c.name,
		Investment:       captable.M(c.investment, ledger.Currency()),
		PreMoney:         captable.M(c.preMoney, ledger.Currency()),
		Class:            c.class,
		PoolTopUpPercent: c.poolTopUp,
	}
	projection, err := ledger.SimulateRound(on, terms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating round: %v\n", err)
		return subcommands.ExitFailure
	}

	view := renderer.NewRoundSimulation(projection)
	if c.asJSON {
		return printJSON(view)
	}
	printMarkdown(renderer.RenderRoundSimulation(view))
	return subcommands.ExitSuccess
}

// --- Log Command ---

type logCmd struct{}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "display the ledger as a chronological audit trail" }
func (*logCmd) Usage() string {
	return `log

  Displays every ledger entry in chronological order, one row per entry.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {}

func (c *logCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.LogMarkdown(ledger))
	return subcommands.ExitSuccess
}
