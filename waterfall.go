package captable

import (
	"fmt"
	"slices"
	"time"
)

// WaterfallReport describes how exit proceeds are distributed across
// shareholders: liquidation preferences first, by descending class
// seniority, then the residual pro rata over all outstanding shares.
type WaterfallReport struct {
	Date             Date
	Time             time.Time // Generation time
	Organization     string
	Valuation        Money
	TotalDistributed Money
	ResidualPerShare Money
	Distributions    []Distribution
}

// Distribution is the share of proceeds attributed to one shareholder.
type Distribution struct {
	Holder          string
	Kind            HolderKind
	Shares          Quantity
	Percent         Percent
	InvestedCapital Money
	Preference      Money // Preference is the amount paid in the preference pass.
	Proceeds        Money
	Multiple        float64 // Multiple is proceeds ÷ invested capital; 0 when no capital was invested.
}

// NewWaterfallReport distributes an exit valuation over the ownership on a
// given date.
//
// Pass one walks share classes in descending seniority. A class carrying a
// liquidation multiple entitles each of its holders to
// min(invested capital × multiple, remaining proceeds), where invested
// capital is the holder's issuance value in that class. Pass two spreads
// whatever remains across all outstanding shares at a uniform residual price
// per share; shares already paid a preference participate again in this
// pass.
func (l *Ledger) NewWaterfallReport(on Date, valuation Money) (*WaterfallReport, error) {
	if valuation.IsNegative() {
		return nil, fmt.Errorf("exit valuation must not be negative, got %s: %w", valuation, ErrInvalidState)
	}

	ownership := l.NewOwnershipReport(on)

	report := &WaterfallReport{
		Date:             on,
		Time:             time.Now(),
		Organization:     l.org,
		Valuation:        valuation,
		TotalDistributed: M(0, l.cur),
		ResidualPerShare: M(0, l.cur),
	}
	if len(ownership.Holders) == 0 {
		return report, nil
	}

	type acc struct {
		dist     *Distribution
		invested Money
	}
	index := make(map[string]*acc, len(ownership.Holders))
	for _, h := range ownership.Holders {
		d := &Distribution{
			Holder:          h.Name,
			Kind:            h.Kind,
			Shares:          h.Shares,
			Percent:         h.Percent,
			InvestedCapital: M(0, l.cur),
			Preference:      M(0, l.cur),
			Proceeds:        M(0, l.cur),
		}
		index[h.Name] = &acc{dist: d}
	}

	remaining := valuation

	// Preference pass, by descending seniority.
	for class := range l.AllClasses() {
		if !class.HasPreference() {
			continue
		}
		for _, h := range ownership.Holders {
			held := l.Holdings(h.Name, class.Name, on)
			if !held.IsPositive() {
				continue
			}
			a := index[h.Name]
			invested := l.InvestedCapital(h.Name, class.Name, on)
			a.invested = a.invested.Add(invested)
			a.dist.InvestedCapital = a.dist.InvestedCapital.Add(invested)

			claim := invested.MulFloat(class.LiquidationMultiple)
			paid := claim.Min(remaining)
			if paid.IsNegative() {
				paid = M(0, l.cur)
			}
			remaining = remaining.Sub(paid)
			a.dist.Preference = a.dist.Preference.Add(paid)
			a.dist.Proceeds = a.dist.Proceeds.Add(paid)
		}
	}

	// Residual pass, pro rata over all outstanding shares.
	if remaining.IsPositive() && ownership.TotalIssued.IsPositive() {
		perShare := remaining.Div(ownership.TotalIssued)
		report.ResidualPerShare = perShare
		for _, h := range ownership.Holders {
			a := index[h.Name]
			a.dist.Proceeds = a.dist.Proceeds.Add(perShare.Mul(h.Shares))
		}
	}

	for _, h := range ownership.Holders {
		a := index[h.Name]
		if a.invested.IsPositive() {
			a.dist.Multiple = a.dist.Proceeds.Ratio(a.invested)
		}
		report.TotalDistributed = report.TotalDistributed.Add(a.dist.Proceeds)
		report.Distributions = append(report.Distributions, *a.dist)
	}

	slices.SortStableFunc(report.Distributions, func(a, b Distribution) int {
		switch {
		case a.Proceeds.GreaterThan(b.Proceeds):
			return -1
		case a.Proceeds.LessThan(b.Proceeds):
			return 1
		default:
			return cmpStrings(a.Holder, b.Holder)
		}
	})

	return report, nil
}
