package captable

import "fmt"

// ClassKind is a typed string identifying the nature of a share class.
type ClassKind string

const (
	ClassCommon      ClassKind = "common"
	ClassPreferred   ClassKind = "preferred"
	ClassSeries      ClassKind = "series"
	ClassOptions     ClassKind = "options"
	ClassWarrants    ClassKind = "warrants"
	ClassConvertible ClassKind = "convertible"
)

// ParseClassKind parses a string into a ClassKind.
func ParseClassKind(s string) (ClassKind, error) {
	switch k := ClassKind(s); k {
	case ClassCommon, ClassPreferred, ClassSeries, ClassOptions, ClassWarrants, ClassConvertible:
		return k, nil
	default:
		return "", fmt.Errorf("unknown share class kind: %q", s)
	}
}

// HolderKind is a typed string identifying the nature of a shareholder.
type HolderKind string

const (
	HolderFounder  HolderKind = "founder"
	HolderInvestor HolderKind = "investor"
	HolderEmployee HolderKind = "employee"
	HolderAdvisor  HolderKind = "advisor"
	HolderCompany  HolderKind = "company"
	HolderOther    HolderKind = "other"
)

// ParseHolderKind parses a string into a HolderKind.
func ParseHolderKind(s string) (HolderKind, error) {
	switch k := HolderKind(s); k {
	case HolderFounder, HolderInvestor, HolderEmployee, HolderAdvisor, HolderCompany, HolderOther:
		return k, nil
	default:
		return "", fmt.Errorf("unknown holder kind: %q", s)
	}
}

// ShareClass is a ledger-scoped registry entry describing one class of
// shares and its economic terms. Classes are unique per name.
type ShareClass struct {
	Name                string    // Name identifies the class, e.g. "common" or "series-a".
	Kind                ClassKind // Kind is the nature of the class.
	Authorized          Quantity  // Authorized is the maximum number of shares that may be issued in this class.
	ParValue            Money     // ParValue is the nominal value of one share, optional.
	VotesPerShare       float64   // VotesPerShare is the voting weight of one share.
	LiquidationMultiple float64   // LiquidationMultiple is the preference multiplier on invested capital; 0 means no preference.
	Participating       bool      // Participating marks preferred that shares in the residual on top of its preference.
	ConversionRatio     float64   // ConversionRatio is the common-share conversion ratio, usually 1.
	DividendRate        float64   // DividendRate is the annual dividend rate, optional.
	Seniority           int       // Seniority ranks classes in a waterfall; higher is paid first.
}

// HasPreference reports whether the class carries a liquidation preference.
func (c ShareClass) HasPreference() bool { return c.LiquidationMultiple > 0 }
