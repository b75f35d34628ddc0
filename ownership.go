package captable

import (
	"maps"
	"slices"
	"time"
)

// OwnershipReport provides a comprehensive, at-a-glance view of the
// capitalization of the organization on a given date: totals, per-class,
// per-holder and per-holder-kind breakdowns. It is computed on the fly from
// the ledger and holds no authoritative state.
type OwnershipReport struct {
	Date            Date
	Time            time.Time // Generation time
	Organization    string
	Currency        string
	TotalAuthorized Quantity
	TotalIssued     Quantity
	Classes         []ClassOwnership
	Holders         []HolderOwnership
	HolderKinds     []KindOwnership
}

// ClassOwnership represents the outstanding position of a single share class.
type ClassOwnership struct {
	Name           string
	Kind           ClassKind
	Authorized     Quantity
	Issued         Quantity
	PercentOfTotal Percent
}

// HolderOwnership represents the aggregate position of a single shareholder.
type HolderOwnership struct {
	Name    string
	Kind    HolderKind
	Shares  Quantity
	Percent Percent
	Classes []HolderClassOwnership
}

// HolderClassOwnership represents one shareholder's position in one class.
type HolderClassOwnership struct {
	Class  string
	Shares Quantity
}

// KindOwnership aggregates ownership by shareholder kind (founders,
// investors, employees...).
type KindOwnership struct {
	Kind    HolderKind
	Holders int
	Shares  Quantity
	Percent Percent
}

// Holder returns the row for a given shareholder, or nil.
func (r *OwnershipReport) Holder(name string) *HolderOwnership {
	for i := range r.Holders {
		if r.Holders[i].Name == name {
			return &r.Holders[i]
		}
	}
	return nil
}

// NewOwnershipReport folds the ledger entries effective on or before 'on'
// into an ownership summary.
//
// When nothing is issued every percentage is zero; there is no
// divide-by-zero branch to hit. Holders are sorted by total shares
// descending.
func (l *Ledger) NewOwnershipReport(on Date) *OwnershipReport {
	type holderAcc struct {
		kind    HolderKind
		total   Quantity
		byClass map[string]Quantity
	}
	holders := make(map[string]*holderAcc)
	classIssued := make(map[string]Quantity)
	var order []string // holder discovery order, for a stable sort

	for e := range l.entriesAsOf(on) {
		for _, p := range e.postings() {
			acc, ok := holders[p.holder]
			if !ok {
				acc = &holderAcc{byClass: make(map[string]Quantity)}
				holders[p.holder] = acc
				order = append(order, p.holder)
			}
			if p.kind != "" {
				acc.kind = p.kind
			}
			acc.total = acc.total.Add(p.shares)
			acc.byClass[p.class] = acc.byClass[p.class].Add(p.shares)
			classIssued[p.class] = classIssued[p.class].Add(p.shares)
		}
	}

	report := &OwnershipReport{
		Date:            on,
		Time:            time.Now(),
		Organization:    l.org,
		Currency:        l.cur,
		TotalAuthorized: l.TotalAuthorized(),
	}

	var totalIssued Quantity
	for _, name := range order {
		totalIssued = totalIssued.Add(holders[name].total)
	}
	report.TotalIssued = totalIssued

	for c := range l.AllClasses() {
		issued := classIssued[c.Name]
		report.Classes = append(report.Classes, ClassOwnership{
			Name:           c.Name,
			Kind:           c.Kind,
			Authorized:     c.Authorized,
			Issued:         issued,
			PercentOfTotal: issued.Percent(totalIssued),
		})
	}

	kinds := make(map[HolderKind]*KindOwnership)
	for _, name := range order {
		acc := holders[name]
		if acc.kind == "" {
			acc.kind = HolderOther
		}

		row := HolderOwnership{
			Name:    name,
			Kind:    acc.kind,
			Shares:  acc.total,
			Percent: acc.total.Percent(totalIssued),
		}
		for _, class := range slices.Sorted(maps.Keys(acc.byClass)) {
			if acc.byClass[class].IsZero() {
				continue
			}
			row.Classes = append(row.Classes, HolderClassOwnership{Class: class, Shares: acc.byClass[class]})
		}
		report.Holders = append(report.Holders, row)

		k, ok := kinds[acc.kind]
		if !ok {
			k = &KindOwnership{Kind: acc.kind}
			kinds[acc.kind] = k
		}
		k.Holders++
		k.Shares = k.Shares.Add(acc.total)
	}

	slices.SortStableFunc(report.Holders, func(a, b HolderOwnership) int {
		switch {
		case a.Shares.GreaterThan(b.Shares):
			return -1
		case a.Shares.LessThan(b.Shares):
			return 1
		default:
			return cmpStrings(a.Name, b.Name)
		}
	})

	for _, k := range kinds {
		k.Percent = k.Shares.Percent(totalIssued)
		report.HolderKinds = append(report.HolderKinds, *k)
	}
	slices.SortFunc(report.HolderKinds, func(a, b KindOwnership) int {
		switch {
		case a.Shares.GreaterThan(b.Shares):
			return -1
		case a.Shares.LessThan(b.Shares):
			return 1
		default:
			return cmpStrings(string(a.Kind), string(b.Kind))
		}
	})

	return report
}
