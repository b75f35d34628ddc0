package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/equityledger/captable"
	"github.com/google/subcommands"
)

// --- Init Command ---

type initCmd struct {
	date     string
	org      string
	currency string
	memo     string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "initialize a new cap table ledger" }
func (*initCmd) Usage() string {
	return `init -org <name> [-currency <code>] [-d <date>] [-m <memo>]

  Declares the organization and its reporting currency. Must be the first
  entry of the ledger.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Entry date (YYYY-MM-DD)")
	f.StringVar(&c.org, "org", "", "Organization name")
	f.StringVar(&c.currency, "currency", "USD", "Reporting currency (ISO 4217)")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.org == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return AppendEntry(captable.NewInit(day, c.memo, c.org, c.currency))
}

// --- Declare Class Command ---

type declareClassCmd struct {
	date                string
	name                string
	classKind           string
	authorized          float64
	parValue            float64
	votesPerShare       float64
	liquidationMultiple float64
	participating       bool
	conversionRatio     float64
	dividendRate        float64
	seniority           int
	memo                string
}

func (*declareClassCmd) Name() string     { return "declare-class" }
func (*declareClassCmd) Synopsis() string { return "declare a share class and its economic terms" }
func (*declareClassCmd) Usage() string {
	return `declare-class -name <name> -class-kind <kind> -authorized <count> [terms...]

  Registers a share class. Kind is one of: common, preferred, series,
  options, warrants, convertible. Economic terms (liquidation multiple,
  conversion ratio, seniority...) drive the waterfall and conversions.
`
}

func (c *declareClassCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Entry date (YYYY-MM-DD)")
	f.StringVar(&c.name, "name", "", "Share class name, unique in the ledger")
	f.StringVar(&c.classKind, "class-kind", "common", "Nature of the class")
	f.Float64Var(&c.authorized, "authorized", 0, "Authorized share count")
	f.Float64Var(&c.parValue, "par-value", 0, "Par value per share")
	f.Float64Var(&c.votesPerShare, "votes", 0, "Votes per share")
	f.Float64Var(&c.liquidationMultiple, "liquidation-multiple", 0, "Liquidation preference multiple")
	f.BoolVar(&c.participating, "participating", false, "Participating preferred")
	f.Float64Var(&c.conversionRatio, "conversion-ratio", 0, "Default conversion ratio into common")
	f.Float64Var(&c.dividendRate, "dividend-rate", 0, "Dividend rate")
	f.IntVar(&c.seniority, "seniority", 0, "Liquidation seniority, higher is paid first")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *declareClassCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.authorized <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	class := captable.ShareClass{
		Name:                c.name,
		Kind:                captable.ClassKind(c.classKind),
		Authorized:          captable.Q(c.authorized),
		ParValue:            captable.M(c.parValue, ""),
		VotesPerShare:       c.votesPerShare,
		LiquidationMultiple: c.liquidationMultiple,
		Participating:       c.participating,
		ConversionRatio:     c.conversionRatio,
		DividendRate:        c.dividendRate,
		Seniority:           c.seniority,
	}
	return AppendEntry(captable.NewDeclareClass(day, c.memo, class))
}

// --- Issue Command ---

type issueCmd struct {
	date       string
	holder     string
	holderKind string
	class      string
	shares     float64
	price      float64
	round      string
	memo       string
}

func (*issueCmd) Name() string     { return "issue" }
func (*issueCmd) Synopsis() string { return "issue new shares to a holder" }
func (*issueCmd) Usage() string {
	return `issue -holder <name> -class <class> -shares <count> [-price <price>] [-holder-kind <kind>]

  Issues new shares. The class's authorized capacity is enforced on the
  entry date.
`
}

func (c *issueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Entry date (YYYY-MM-DD)")
	f.StringVar(&c.holder, "holder", "", "Shareholder name")
	f.StringVar(&c.holderKind, "holder-kind", "", "Nature of the shareholder (founder, investor, employee...)")
	f.StringVar(&c.class, "class", "", "Share class name")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares")
	f.Float64Var(&c.price, "price", 0, "Price per share, in the ledger currency")
	f.StringVar(&c.round, "round", "", "Optional funding round name")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *issueCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holder == "" || c.class == "" || c.shares <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	e := captable.NewIssue(day, c.memo, c.holder, captable.HolderKind(c.holderKind), c.class, captable.Q(c.shares), captable.M(c.price, ""))
	e.Round = c.round
	return AppendEntry(e)
}

// --- Transfer Command ---

type transferCmd struct {
	date     string
	class    string
	from     string
	fromKind string
	to       string
	toKind   string
	shares   float64
	price    float64
	memo     string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "transfer shares between holders" }
func (*transferCmd) Usage() string {
	return `transfer -from <holder> -to <holder> -class <class> -shares <count> [-price <price>]

  Moves shares between two holders, e.g. a secondary sale. The
  outstanding count is unchanged.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Entry date (YYYY-MM-DD)")
	f.StringVar(&c.class, "class", "", "Share class name")
	f.StringVar(&c.from, "from", "", "Selling holder")
	f.StringVar(&c.fromKind, "from-kind", "", "Nature of the selling holder")
	f.StringVar(&c.to, "to", "", "Buying holder")
	f.StringVar(&c.toKind, "to-kind", "", "Nature of the buying holder")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares")
	f.Float64Var(&c.price, "price", 0, "Price per share, in the ledger currency")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" || c.class == "" || c.shares <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return AppendEntry(captable.NewTransfer(day, c.memo, c.class,
		c.from, captable.HolderKind(c.fromKind),
		c.to, captable.HolderKind(c.toKind),
		captable.Q(c.shares), captable.M(c.price, "")))
}

// --- Convert Command ---

type convertCmd struct {
	date       string
	holder     string
	holderKind string
	fromClass  string
	toClass    string
	shares     float64
	ratio      float64
	memo       string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert shares of one class into another" }
func (*convertCmd) Usage() string {
	return `convert -holder <name> -from-class <class> -to-class <class> -shares <count> [-ratio <ratio>]

  Converts shares, applying the source class's conversion ratio unless
  -ratio overrides it.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Entry date (YYYY-MM-DD)")
	f.StringVar(&c.holder, "holder", "", "Shareholder name")
	f.StringVar(&c.holderKind, "holder-kind", "", "Nature of the shareholder")
	f.StringVar(&c.fromClass, "from-class", "", "Source share class")
	f.StringVar(&c.toClass, "to-class", "", "Target share class")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares, counted in the source class")
	f.Float64Var(&c.ratio, "ratio", 0, "Conversion ratio override")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holder == "" || c.fromClass == "" || c.toClass == "" || c.shares <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return AppendEntry(captable.NewConvert(day, c.memo, c.holder, captable.HolderKind(c.holderKind),
		c.fromClass, c.toClass, captable.Q(c.shares), c.ratio))
}

// --- Buyback Command ---

type buybackCmd struct {
	date       string
	holder     string
	holderKind string
	class      string
	shares     float64
	price      float64
	memo       string
}

func (*buybackCmd) Name() string     { return "buyback" }
func (*buybackCmd) Synopsis() string { return "repurchase shares from a holder" }
func (*buybackCmd) Usage() string {
	return `buyback -holder <name> -class <class> -shares <count> [-price <price>]

  The company repurchases shares; the outstanding count shrinks.
`
}

func (c *buybackCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Entry date (YYYY-MM-DD)")
	f.StringVar(&c.holder, "holder", "", "Shareholder name")
	f.StringVar(&c.holderKind, "holder-kind", "", "Nature of the shareholder")
	f.StringVar(&c.class, "class", "", "Share class name")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares")
	f.Float64Var(&c.price, "price", 0, "Repurchase price per share")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *buybackCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holder == "" || c.class == "" || c.shares <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return AppendEntry(captable.NewBuyback(day, c.memo, c.holder, captable.HolderKind(c.holderKind),
		c.class, captable.Q(c.shares), captable.M(c.price, "")))
}

// --- Cancel Shares Command ---

type cancelSharesCmd struct {
	date       string
	holder     string
	holderKind string
	class      string
	shares     float64
	memo       string
}

func (*cancelSharesCmd) Name() string     { return "cancel-shares" }
func (*cancelSharesCmd) Synopsis() string { return "void shares held by a holder without compensation" }
func (*cancelSharesCmd) Usage() string {
	return `cancel-shares -holder <name> -class <class> -shares <count>

  Voids shares, e.g. forfeited restricted stock.
`
}

func (c *cancelSharesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", captable.Today().String(), "Entry date (YYYY-MM-DD)")
	f.StringVar(&c.holder, "holder", "", "Shareholder name")
	f.StringVar(&c.holderKind, "holder-kind", "", "Nature of the shareholder")
	f.StringVar(&c.class, "class", "", "Share class name")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the entry")
}

func (c *cancelSharesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holder == "" || c.class == "" || c.shares <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := captable.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return AppendEntry(captable.NewCancel(day, c.memo, c.holder, captable.HolderKind(c.holderKind),
		c.class, captable.Q(c.shares)))
}
