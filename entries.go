package captable

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying ledger entry commands.
type CommandType string

// Command types used for identifying ledger entries.
const (
	CmdInit         CommandType = "init"
	CmdDeclareClass CommandType = "declare-class"
	CmdIssue        CommandType = "issue"
	CmdTransfer     CommandType = "transfer"
	CmdExercise     CommandType = "exercise"
	CmdConvert      CommandType = "convert"
	CmdBuyback      CommandType = "buyback"
	CmdCancel       CommandType = "cancel"
)

// Entry defines the common interface for all ownership-affecting events that
// can be recorded in the ledger.
type Entry interface {
	What() CommandType // What returns the command type of the entry (e.g., "issue", "transfer").
	When() Date        // When returns the effective date of the entry.
	Equal(Entry) bool
	// postings reduces the entry to signed share movements per
	// (holder, class). Every derived figure in the package is a fold over
	// postings; cached percentages are never ground truth.
	postings() []posting
}

// posting is one signed share movement attributed to a holder and a class.
type posting struct {
	holder string
	kind   HolderKind
	class  string
	shares Quantity // signed: positive = addition, negative = reduction
	value  Money    // price × |shares| for priced entries
}

type baseCmd struct {
	Command CommandType `json:"command"`        // Command specifies the type of entry (e.g., "issue", "transfer").
	Date    Date        `json:"date"`           // Date is the effective date of the entry.
	Memo    string      `json:"memo,omitempty"` // Memo provides an optional rationale or note for the entry.
}

// What returns the command name for the entry, which is used to identify the type of entry.
func (t baseCmd) What() CommandType {
	return t.Command
}

// When returns the effective date of the entry.
func (t baseCmd) When() Date {
	return t.Date
}

// MarshalJSON implements the json.Marshaler interface for baseCmd.
func (t baseCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Append("date", t.Date)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// Validate checks the base command fields. It sets the date to today if it's zero.
// It's meant to be embedded in other entry validation methods.
func (t *baseCmd) Validate() {
	if t.Date == (Date{}) {
		t.Date = Today()
	}
}

// holderCmd is a component for holder-scoped entries (issue, exercise,
// buyback, cancel).
type holderCmd struct {
	baseCmd
	Holder string     `json:"holder"` // Holder references the shareholder.
	Kind   HolderKind `json:"kind"`   // Kind is the nature of the shareholder.
	Class  string     `json:"class"`  // Class is the share class name.
}

// Validate checks the holder command fields. It validates the base command,
// ensures a holder is present, defaults the holder kind, and checks the
// share class is declared in the ledger.
func (t *holderCmd) Validate(ledger *Ledger) error {
	t.baseCmd.Validate()

	if t.Holder == "" {
		return errors.New("holder is missing")
	}
	if t.Kind == "" {
		t.Kind = HolderOther
	} else if _, err := ParseHolderKind(string(t.Kind)); err != nil {
		return err
	}
	if t.Class == "" {
		return errors.New("share class is missing")
	}
	if ledger.Class(t.Class) == nil {
		return fmt.Errorf("share class %q not declared in ledger: %w", t.Class, ErrNotFound)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for holderCmd.
func (t holderCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("holder", t.Holder)
	w.Append("kind", t.Kind)
	w.Append("class", t.Class)
	return w.MarshalJSON()
}

// priceCmd is a specialized struct to read an optional price-per-share in
// two fields.
type priceCmd struct {
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

func (p priceCmd) Money() Money {
	return M(p.Price, p.Currency)
}

// Init declares the organization and its reporting currency. It must be the
// first entry of a ledger.
type Init struct {
	baseCmd
	Organization string `json:"organization"`
	Currency     string `json:"currency"`
}

// NewInit creates a new Init entry.
func NewInit(day Date, memo, organization, currency string) Init {
	return Init{
		baseCmd:      baseCmd{Command: CmdInit, Date: day, Memo: memo},
		Organization: organization,
		Currency:     currency,
	}
}

// MarshalJSON implements the json.Marshaler interface for Init.
func (t Init) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("organization", t.Organization)
	w.Append("currency", t.Currency)
	return w.MarshalJSON()
}

func (t Init) Equal(other Entry) bool {
	o, ok := other.(Init)
	return ok && t == o
}

func (t Init) postings() []posting { return nil }

// Validate checks the Init entry's fields.
func (t Init) Validate(ledger *Ledger) (Entry, error) {
	t.baseCmd.Validate()
	if t.Organization == "" {
		return t, errors.New("organization is missing")
	}
	if err := ValidateCurrency(t.Currency); err != nil {
		return t, err
	}
	if ledger.org != "" {
		return t, fmt.Errorf("ledger already initialized for %q: %w", ledger.org, ErrInvalidState)
	}
	return t, nil
}

// DeclareClass registers a share class and its economic terms in the ledger.
type DeclareClass struct {
	baseCmd
	ShareClass
}

// NewDeclareClass creates a new DeclareClass entry.
func NewDeclareClass(day Date, memo string, class ShareClass) DeclareClass {
	return DeclareClass{
		baseCmd:    baseCmd{Command: CmdDeclareClass, Date: day, Memo: memo},
		ShareClass: class,
	}
}

// MarshalJSON implements the json.Marshaler interface for DeclareClass.
func (t DeclareClass) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("name", t.Name)
	w.Append("classKind", t.ShareClass.Kind)
	w.Append("authorized", t.Authorized)
	if !t.ParValue.IsZero() {
		w.Append("parValue", t.ParValue.value)
	}
	w.Optional("votesPerShare", t.VotesPerShare)
	w.Optional("liquidationMultiple", t.LiquidationMultiple)
	w.Optional("participating", t.Participating)
	w.Optional("conversionRatio", t.ConversionRatio)
	w.Optional("dividendRate", t.DividendRate)
	w.Optional("seniority", t.Seniority)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for DeclareClass.
func (t *DeclareClass) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseCmd
		Name                string          `json:"name"`
		ClassKind           ClassKind       `json:"classKind"`
		Authorized          Quantity        `json:"authorized"`
		ParValue            decimal.Decimal `json:"parValue"`
		VotesPerShare       float64         `json:"votesPerShare"`
		LiquidationMultiple float64         `json:"liquidationMultiple"`
		Participating       bool            `json:"participating"`
		ConversionRatio     float64         `json:"conversionRatio"`
		DividendRate        float64         `json:"dividendRate"`
		Seniority           int             `json:"seniority"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseCmd = temp.baseCmd
	t.ShareClass = ShareClass{
		Name:                temp.Name,
		Kind:                temp.ClassKind,
		Authorized:          temp.Authorized,
		ParValue:            M(temp.ParValue, ""),
		VotesPerShare:       temp.VotesPerShare,
		LiquidationMultiple: temp.LiquidationMultiple,
		Participating:       temp.Participating,
		ConversionRatio:     temp.ConversionRatio,
		DividendRate:        temp.DividendRate,
		Seniority:           temp.Seniority,
	}
	return nil
}

func (t DeclareClass) Equal(other Entry) bool {
	o, ok := other.(DeclareClass)
	return ok && t.baseCmd == o.baseCmd && t.Name == o.Name &&
		t.ShareClass.Kind == o.ShareClass.Kind && t.Authorized.Equal(o.Authorized) &&
		t.Seniority == o.Seniority
}

func (t DeclareClass) postings() []posting { return nil }

// Validate checks the DeclareClass entry's fields. Classes are unique per
// name; re-declaring an existing class is rejected.
func (t DeclareClass) Validate(ledger *Ledger) (Entry, error) {
	t.baseCmd.Validate()
	if t.Name == "" {
		return t, errors.New("share class name is missing")
	}
	if _, err := ParseClassKind(string(t.ShareClass.Kind)); err != nil {
		return t, err
	}
	if t.Authorized.IsNegative() || t.Authorized.IsZero() {
		return t, fmt.Errorf("authorized shares must be positive, got %s", t.Authorized)
	}
	if ledger.Class(t.Name) != nil {
		return t, fmt.Errorf("share class %q already declared: %w", t.Name, ErrInvalidState)
	}
	if t.LiquidationMultiple < 0 {
		return t, fmt.Errorf("liquidation multiple must not be negative, got %v", t.LiquidationMultiple)
	}
	return t, nil
}

// Issue records the issuance of new shares to a holder, usually as part of a
// funding round.
type Issue struct {
	holderCmd
	Shares Quantity // Shares is the number of shares issued.
	Price  Money    // Price is the price per share, optional.
	Round  string   // Round optionally links the issuance to a funding round.
}

// NewIssue creates a new Issue entry.
func NewIssue(day Date, memo, holder string, kind HolderKind, class string, shares Quantity, price Money) Issue {
	return Issue{
		holderCmd: holderCmd{baseCmd: baseCmd{Command: CmdIssue, Date: day, Memo: memo}, Holder: holder, Kind: kind, Class: class},
		Shares:    shares,
		Price:     price,
	}
}

// MarshalJSON implements the json.Marshaler interface for Issue.
func (t Issue) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.holderCmd)
	w.Append("shares", t.Shares)
	w.Optional("price", t.Price.value)
	w.Optional("currency", t.Price.cur)
	w.Optional("round", t.Round)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Issue.
func (t *Issue) UnmarshalJSON(data []byte) error {
	var temp struct {
		holderCmd
		priceCmd
		Shares Quantity `json:"shares"`
		Round  string   `json:"round"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.holderCmd = temp.holderCmd
	t.Shares = temp.Shares
	t.Price = temp.Money()
	t.Round = temp.Round
	return nil
}

func (t Issue) Equal(other Entry) bool {
	o, ok := other.(Issue)
	return ok && t.holderCmd == o.holderCmd && t.Shares.Equal(o.Shares) &&
		t.Price.Equal(o.Price) && t.Round == o.Round
}

// TotalValue returns the invested capital this issuance represents.
func (t Issue) TotalValue() Money { return t.Price.Mul(t.Shares) }

func (t Issue) postings() []posting {
	return []posting{{holder: t.Holder, kind: t.Kind, class: t.Class, shares: t.Shares, value: t.TotalValue()}}
}

// Validate checks the Issue entry's fields. It ensures the share count is
// positive and that the class's authorized capacity is not exceeded on the
// entry date.
func (t Issue) Validate(ledger *Ledger) (Entry, error) {
	if err := t.holderCmd.Validate(ledger); err != nil {
		return t, err
	}
	if t.Shares.IsNegative() || t.Shares.IsZero() {
		return t, fmt.Errorf("issue shares must be positive, got %s", t.Shares)
	}
	if t.Price.IsNegative() {
		return t, fmt.Errorf("issue price must not be negative, got %s", t.Price)
	}
	// quick fix: default the price currency to the ledger currency.
	if !t.Price.IsZero() && t.Price.Currency() == "" {
		t.Price = M(t.Price.value, ledger.cur)
	}

	class := ledger.Class(t.Class)
	issued := ledger.IssuedInClass(t.Class, t.Date)
	if issued.Add(t.Shares).GreaterThan(class.Authorized) {
		return t, fmt.Errorf("on %s, issuing %s shares of %q exceeds authorized %s (issued %s): %w",
			t.Date, t.Shares, t.Class, class.Authorized, issued, ErrInsufficientCapacity)
	}
	return t, nil
}

// Transfer moves shares of a class between two holders. The total issued
// share count is unchanged.
type Transfer struct {
	baseCmd
	Class    string     `json:"class"`
	From     string     `json:"from"`
	FromKind HolderKind `json:"fromKind"`
	To       string     `json:"to"`
	ToKind   HolderKind `json:"toKind"`
	Shares   Quantity
	Price    Money // Price is the price per share, optional.
}

// NewTransfer creates a new Transfer entry.
func NewTransfer(day Date, memo, class, from string, fromKind HolderKind, to string, toKind HolderKind, shares Quantity, price Money) Transfer {
	return Transfer{
		baseCmd:  baseCmd{Command: CmdTransfer, Date: day, Memo: memo},
		Class:    class,
		From:     from,
		FromKind: fromKind,
		To:       to,
		ToKind:   toKind,
		Shares:   shares,
		Price:    price,
	}
}

// MarshalJSON implements the json.Marshaler interface for Transfer.
func (t Transfer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("class", t.Class)
	w.Append("from", t.From)
	w.Append("fromKind", t.FromKind)
	w.Append("to", t.To)
	w.Append("toKind", t.ToKind)
	w.Append("shares", t.Shares)
	w.Optional("price", t.Price.value)
	w.Optional("currency", t.Price.cur)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transfer.
func (t *Transfer) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseCmd
		priceCmd
		Class    string     `json:"class"`
		From     string     `json:"from"`
		FromKind HolderKind `json:"fromKind"`
		To       string     `json:"to"`
		ToKind   HolderKind `json:"toKind"`
		Shares   Quantity   `json:"shares"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseCmd = temp.baseCmd
	t.Class = temp.Class
	t.From = temp.From
	t.FromKind = temp.FromKind
	t.To = temp.To
	t.ToKind = temp.ToKind
	t.Shares = temp.Shares
	t.Price = temp.Money()
	return nil
}

func (t Transfer) Equal(other Entry) bool {
	o, ok := other.(Transfer)
	return ok && t.baseCmd == o.baseCmd && t.Class == o.Class && t.From == o.From &&
		t.To == o.To && t.Shares.Equal(o.Shares) && t.Price.Equal(o.Price)
}

func (t Transfer) postings() []posting {
	return []posting{
		{holder: t.From, kind: t.FromKind, class: t.Class, shares: t.Shares.Neg()},
		{holder: t.To, kind: t.ToKind, class: t.Class, shares: t.Shares, value: t.Price.Mul(t.Shares)},
	}
}

// Validate checks the Transfer entry's fields. The seller must hold at least
// the transferred share count on the entry date.
func (t Transfer) Validate(ledger *Ledger) (Entry, error) {
	t.baseCmd.Validate()
	if t.From == "" || t.To == "" {
		return t, errors.New("transfer holders are missing")
	}
	if t.From == t.To {
		return t, fmt.Errorf("transfer from and to are the same holder %q", t.From)
	}
	if t.FromKind == "" {
		t.FromKind = HolderOther
	}
	if t.ToKind == "" {
		t.ToKind = HolderOther
	}
	if t.Class == "" {
		return t, errors.New("share class is missing")
	}
	if ledger.Class(t.Class) == nil {
		return t, fmt.Errorf("share class %q not declared in ledger: %w", t.Class, ErrNotFound)
	}
	if t.Shares.IsNegative() || t.Shares.IsZero() {
		return t, fmt.Errorf("transfer shares must be positive, got %s", t.Shares)
	}
	if !t.Price.IsZero() && t.Price.Currency() == "" {
		t.Price = M(t.Price.value, ledger.cur)
	}

	held := ledger.Holdings(t.From, t.Class, t.Date)
	if held.LessThan(t.Shares) {
		return t, fmt.Errorf("on %s, %q holds %s shares of %q, cannot transfer %s: %w",
			t.Date, t.From, held, t.Class, t.Shares, ErrInsufficientCapacity)
	}
	return t, nil
}

// Exercise records shares issued to a holder on exercise of an option grant.
type Exercise struct {
	holderCmd
	Shares Quantity
	Price  Money  // Price is the exercise price per share.
	Grant  string // Grant optionally links to the originating grant.
}

// NewExercise creates a new Exercise entry.
func NewExercise(day Date, memo, holder string, kind HolderKind, class string, shares Quantity, price Money, grant string) Exercise {
	return Exercise{
		holderCmd: holderCmd{baseCmd: baseCmd{Command: CmdExercise, Date: day, Memo: memo}, Holder: holder, Kind: kind, Class: class},
		Shares:    shares,
		Price:     price,
		Grant:     grant,
	}
}

// MarshalJSON implements the json.Marshaler interface for Exercise.
func (t Exercise) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.holderCmd)
	w.Append("shares", t.Shares)
	w.Optional("price", t.Price.value)
	w.Optional("currency", t.Price.cur)
	w.Optional("grant", t.Grant)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Exercise.
func (t *Exercise) UnmarshalJSON(data []byte) error {
	var temp struct {
		holderCmd
		priceCmd
		Shares Quantity `json:"shares"`
		Grant  string   `json:"grant"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.holderCmd = temp.holderCmd
	t.Shares = temp.Shares
	t.Price = temp.Money()
	t.Grant = temp.Grant
	return nil
}

func (t Exercise) Equal(other Entry) bool {
	o, ok := other.(Exercise)
	return ok && t.holderCmd == o.holderCmd && t.Shares.Equal(o.Shares) &&
		t.Price.Equal(o.Price) && t.Grant == o.Grant
}

func (t Exercise) postings() []posting {
	return []posting{{holder: t.Holder, kind: t.Kind, class: t.Class, shares: t.Shares, value: t.Price.Mul(t.Shares)}}
}

// Validate checks the Exercise entry's fields against the class capacity.
func (t Exercise) Validate(ledger *Ledger) (Entry, error) {
	if err := t.holderCmd.Validate(ledger); err != nil {
		return t, err
	}
	if t.Shares.IsNegative() || t.Shares.IsZero() {
		return t, fmt.Errorf("exercise shares must be positive, got %s", t.Shares)
	}
	if !t.Price.IsZero() && t.Price.Currency() == "" {
		t.Price = M(t.Price.value, ledger.cur)
	}

	class := ledger.Class(t.Class)
	issued := ledger.IssuedInClass(t.Class, t.Date)
	if issued.Add(t.Shares).GreaterThan(class.Authorized) {
		return t, fmt.Errorf("on %s, exercising %s shares of %q exceeds authorized %s: %w",
			t.Date, t.Shares, t.Class, class.Authorized, ErrInsufficientCapacity)
	}
	return t, nil
}

// Convert converts shares of one class into another, applying the ratio.
type Convert struct {
	baseCmd
	Holder    string     `json:"holder"`
	Kind      HolderKind `json:"kind"`
	FromClass string     `json:"fromClass"`
	ToClass   string     `json:"toClass"`
	Shares    Quantity   // Shares is the number of shares converted, counted in the source class.
	Ratio     float64    // Ratio overrides the class conversion ratio when non-zero.
}

// NewConvert creates a new Convert entry.
func NewConvert(day Date, memo, holder string, kind HolderKind, fromClass, toClass string, shares Quantity, ratio float64) Convert {
	return Convert{
		baseCmd:   baseCmd{Command: CmdConvert, Date: day, Memo: memo},
		Holder:    holder,
		Kind:      kind,
		FromClass: fromClass,
		ToClass:   toClass,
		Shares:    shares,
		Ratio:     ratio,
	}
}

// MarshalJSON implements the json.Marshaler interface for Convert.
func (t Convert) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("holder", t.Holder)
	w.Append("kind", t.Kind)
	w.Append("fromClass", t.FromClass)
	w.Append("toClass", t.ToClass)
	w.Append("shares", t.Shares)
	w.Optional("ratio", t.Ratio)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Convert.
func (t *Convert) UnmarshalJSON(data []byte) error {
	var temp struct {
		baseCmd
		Holder    string     `json:"holder"`
		Kind      HolderKind `json:"kind"`
		FromClass string     `json:"fromClass"`
		ToClass   string     `json:"toClass"`
		Shares    Quantity   `json:"shares"`
		Ratio     float64    `json:"ratio"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.baseCmd = temp.baseCmd
	t.Holder = temp.Holder
	t.Kind = temp.Kind
	t.FromClass = temp.FromClass
	t.ToClass = temp.ToClass
	t.Shares = temp.Shares
	t.Ratio = temp.Ratio
	return nil
}

func (t Convert) Equal(other Entry) bool {
	o, ok := other.(Convert)
	return ok && t.baseCmd == o.baseCmd && t.Holder == o.Holder &&
		t.FromClass == o.FromClass && t.ToClass == o.ToClass &&
		t.Shares.Equal(o.Shares) && t.Ratio == o.Ratio
}

// converted returns the share count credited in the target class.
func (t Convert) converted() Quantity {
	ratio := t.Ratio
	if ratio == 0 {
		ratio = 1
	}
	return t.Shares.Mul(Q(ratio))
}

func (t Convert) postings() []posting {
	return []posting{
		{holder: t.Holder, kind: t.Kind, class: t.FromClass, shares: t.Shares.Neg()},
		{holder: t.Holder, kind: t.Kind, class: t.ToClass, shares: t.converted()},
	}
}

// Validate checks the Convert entry's fields. It defaults the ratio from the
// source class registry entry and checks holdings and target capacity.
func (t Convert) Validate(ledger *Ledger) (Entry, error) {
	t.baseCmd.Validate()
	if t.Holder == "" {
		return t, errors.New("holder is missing")
	}
	if t.Kind == "" {
		t.Kind = HolderOther
	}
	from := ledger.Class(t.FromClass)
	if from == nil {
		return t, fmt.Errorf("share class %q not declared in ledger: %w", t.FromClass, ErrNotFound)
	}
	to := ledger.Class(t.ToClass)
	if to == nil {
		return t, fmt.Errorf("share class %q not declared in ledger: %w", t.ToClass, ErrNotFound)
	}
	if t.Shares.IsNegative() || t.Shares.IsZero() {
		return t, fmt.Errorf("convert shares must be positive, got %s", t.Shares)
	}
	// quick fix: default the ratio from the source class terms.
	if t.Ratio == 0 && from.ConversionRatio != 0 {
		t.Ratio = from.ConversionRatio
	}

	held := ledger.Holdings(t.Holder, t.FromClass, t.Date)
	if held.LessThan(t.Shares) {
		return t, fmt.Errorf("on %s, %q holds %s shares of %q, cannot convert %s: %w",
			t.Date, t.Holder, held, t.FromClass, t.Shares, ErrInsufficientCapacity)
	}
	issued := ledger.IssuedInClass(t.ToClass, t.Date)
	if issued.Add(t.converted()).GreaterThan(to.Authorized) {
		return t, fmt.Errorf("on %s, converting into %s shares of %q exceeds authorized %s: %w",
			t.Date, t.converted(), t.ToClass, to.Authorized, ErrInsufficientCapacity)
	}
	return t, nil
}

// Buyback records a repurchase of shares by the company; the shares leave
// the holder and the outstanding count shrinks.
type Buyback struct {
	holderCmd
	Shares Quantity
	Price  Money // Price is the repurchase price per share, optional.
}

// NewBuyback creates a new Buyback entry.
func NewBuyback(day Date, memo, holder string, kind HolderKind, class string, shares Quantity, price Money) Buyback {
	return Buyback{
		holderCmd: holderCmd{baseCmd: baseCmd{Command: CmdBuyback, Date: day, Memo: memo}, Holder: holder, Kind: kind, Class: class},
		Shares:    shares,
		Price:     price,
	}
}

// MarshalJSON implements the json.Marshaler interface for Buyback.
func (t Buyback) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.holderCmd)
	w.Append("shares", t.Shares)
	w.Optional("price", t.Price.value)
	w.Optional("currency", t.Price.cur)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Buyback.
func (t *Buyback) UnmarshalJSON(data []byte) error {
	var temp struct {
		holderCmd
		priceCmd
		Shares Quantity `json:"shares"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.holderCmd = temp.holderCmd
	t.Shares = temp.Shares
	t.Price = temp.Money()
	return nil
}

func (t Buyback) Equal(other Entry) bool {
	o, ok := other.(Buyback)
	return ok && t.holderCmd == o.holderCmd && t.Shares.Equal(o.Shares) && t.Price.Equal(o.Price)
}

func (t Buyback) postings() []posting {
	return []posting{{holder: t.Holder, kind: t.Kind, class: t.Class, shares: t.Shares.Neg(), value: t.Price.Mul(t.Shares).Neg()}}
}

// Validate checks the Buyback entry's fields against the holder's position.
func (t Buyback) Validate(ledger *Ledger) (Entry, error) {
	if err := t.holderCmd.Validate(ledger); err != nil {
		return t, err
	}
	if t.Shares.IsNegative() || t.Shares.IsZero() {
		return t, fmt.Errorf("buyback shares must be positive, got %s", t.Shares)
	}
	if !t.Price.IsZero() && t.Price.Currency() == "" {
		t.Price = M(t.Price.value, ledger.cur)
	}

	held := ledger.Holdings(t.Holder, t.Class, t.Date)
	if held.LessThan(t.Shares) {
		return t, fmt.Errorf("on %s, %q holds %s shares of %q, cannot buy back %s: %w",
			t.Date, t.Holder, held, t.Class, t.Shares, ErrInsufficientCapacity)
	}
	return t, nil
}

// Cancel voids shares held by a holder without compensation, e.g. forfeited
// restricted stock.
type Cancel struct {
	holderCmd
	Shares Quantity
}

// NewCancel creates a new Cancel entry.
func NewCancel(day Date, memo, holder string, kind HolderKind, class string, shares Quantity) Cancel {
	return Cancel{
		holderCmd: holderCmd{baseCmd: baseCmd{Command: CmdCancel, Date: day, Memo: memo}, Holder: holder, Kind: kind, Class: class},
		Shares:    shares,
	}
}

// MarshalJSON implements the json.Marshaler interface for Cancel.
func (t Cancel) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.holderCmd)
	w.Append("shares", t.Shares)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Cancel.
func (t *Cancel) UnmarshalJSON(data []byte) error {
	var temp struct {
		holderCmd
		Shares Quantity `json:"shares"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.holderCmd = temp.holderCmd
	t.Shares = temp.Shares
	return nil
}

func (t Cancel) Equal(other Entry) bool {
	o, ok := other.(Cancel)
	return ok && t.holderCmd == o.holderCmd && t.Shares.Equal(o.Shares)
}

func (t Cancel) postings() []posting {
	return []posting{{holder: t.Holder, kind: t.Kind, class: t.Class, shares: t.Shares.Neg()}}
}

// Validate checks the Cancel entry's fields against the holder's position.
func (t Cancel) Validate(ledger *Ledger) (Entry, error) {
	if err := t.holderCmd.Validate(ledger); err != nil {
		return t, err
	}
	if t.Shares.IsNegative() || t.Shares.IsZero() {
		return t, fmt.Errorf("cancel shares must be positive, got %s", t.Shares)
	}

	held := ledger.Holdings(t.Holder, t.Class, t.Date)
	if held.LessThan(t.Shares) {
		return t, fmt.Errorf("on %s, %q holds %s shares of %q, cannot cancel %s: %w",
			t.Date, t.Holder, held, t.Class, t.Shares, ErrInsufficientCapacity)
	}
	return t, nil
}
