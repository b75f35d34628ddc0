package captable

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
)

// Ledger represents the ownership record of one organization.
//
// In a Ledger entries are always in chronological order. Every ownership
// figure is recomputed from the signed entries; nothing derived is stored.
type Ledger struct {
	entries []Entry
	classes map[string]ShareClass // index share classes by name
	kinds   map[string]HolderKind // index the last declared kind by holder name
	org     string
	cur     string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make([]Entry, 0),
		classes: make(map[string]ShareClass),
		kinds:   make(map[string]HolderKind),
	}
}

// Organization returns the organization name set by the init entry.
func (l *Ledger) Organization() string { return l.org }

// Currency returns the ledger currency set by the init entry.
func (l *Ledger) Currency() string { return l.cur }

// Class returns the share class declared with this name, or nil if unknown.
func (l *Ledger) Class(name string) *ShareClass {
	c, ok := l.classes[name]
	if !ok {
		return nil
	}
	return &c
}

// AllClasses returns an iterator over the declared share classes, sorted by
// descending seniority then by name.
func (l *Ledger) AllClasses() iter.Seq[ShareClass] {
	classes := slices.Collect(maps.Values(l.classes))
	slices.SortFunc(classes, func(a, b ShareClass) int {
		if a.Seniority != b.Seniority {
			return b.Seniority - a.Seniority
		}
		return cmpStrings(a.Name, b.Name)
	})
	return slices.Values(classes)
}

func cmpStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AllEntries returns an iterator over all entries in chronological order.
func (l *Ledger) AllEntries() iter.Seq[Entry] {
	return slices.Values(l.entries)
}

// entriesAsOf returns an iterator over entries with an effective date on or
// before 'on'.
func (l *Ledger) entriesAsOf(on Date) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range l.entries {
			if e.When().After(on) {
				break
			}
			if !yield(e) {
				return
			}
		}
	}
}

// HolderKindOf returns the last recorded kind for a holder, or HolderOther.
func (l *Ledger) HolderKindOf(holder string) HolderKind {
	if k, ok := l.kinds[holder]; ok {
		return k
	}
	return HolderOther
}

// Validate checks an entry for correctness and applies quick fixes where
// applicable (e.g., defaulting the price currency). It returns the validated
// (and potentially modified) entry or an error detailing the validation
// failure.
func (l *Ledger) Validate(e Entry) (Entry, error) {
	var err error
	switch v := e.(type) {
	case Init:
		e, err = v.Validate(l)
	case DeclareClass:
		e, err = v.Validate(l)
	case Issue:
		e, err = v.Validate(l)
	case Transfer:
		e, err = v.Validate(l)
	case Exercise:
		e, err = v.Validate(l)
	case Convert:
		e, err = v.Validate(l)
	case Buyback:
		e, err = v.Validate(l)
	case Cancel:
		e, err = v.Validate(l)
	default:
		return e, fmt.Errorf("unsupported entry type for validation: %T", e)
	}
	if err != nil {
		return e, fmt.Errorf("invalid %s entry on %v: %w", e.What(), e.When(), err)
	}
	return e, nil
}

// Append appends entries to this ledger and maintains the chronological
// order of entries. Entries are expected to be validated first.
func (l *Ledger) Append(entries ...Entry) {
	l.entries = append(l.entries, entries...)
	// process organization, class declarations and holder kinds.
	l.processEntries(entries...)
	l.stableSort()
}

// processEntries maintains the ledger indexes from appended entries.
func (l *Ledger) processEntries(entries ...Entry) {
	for _, e := range entries {
		switch v := e.(type) {
		case Init:
			l.org = v.Organization
			l.cur = v.Currency
		case DeclareClass:
			l.classes[v.Name] = v.ShareClass
		default:
			for _, p := range e.postings() {
				if p.kind != "" {
					l.kinds[p.holder] = p.kind
				}
			}
		}
	}
}

// stableSort keeps entries of the same day in insertion order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].When().Before(l.entries[j].When())
	})
}

// Holdings returns the number of shares of 'class' held by 'holder' on a
// given date: the date-filtered sum of signed postings.
func (l *Ledger) Holdings(holder, class string, on Date) Quantity {
	var total Quantity
	for e := range l.entriesAsOf(on) {
		for _, p := range e.postings() {
			if p.holder == holder && p.class == class {
				total = total.Add(p.shares)
			}
		}
	}
	return total
}

// HolderShares returns the total number of shares held by 'holder' across
// all classes on a given date.
func (l *Ledger) HolderShares(holder string, on Date) Quantity {
	var total Quantity
	for e := range l.entriesAsOf(on) {
		for _, p := range e.postings() {
			if p.holder == holder {
				total = total.Add(p.shares)
			}
		}
	}
	return total
}

// IssuedInClass returns the outstanding share count of a class on a given
// date.
func (l *Ledger) IssuedInClass(class string, on Date) Quantity {
	var total Quantity
	for e := range l.entriesAsOf(on) {
		for _, p := range e.postings() {
			if p.class == class {
				total = total.Add(p.shares)
			}
		}
	}
	return total
}

// TotalIssued returns the total outstanding share count across all classes
// on a given date.
func (l *Ledger) TotalIssued(on Date) Quantity {
	var total Quantity
	for e := range l.entriesAsOf(on) {
		for _, p := range e.postings() {
			total = total.Add(p.shares)
		}
	}
	return total
}

// TotalAuthorized returns the sum of authorized shares across all declared
// classes.
func (l *Ledger) TotalAuthorized() Quantity {
	var total Quantity
	for c := range l.AllClasses() {
		total = total.Add(c.Authorized)
	}
	return total
}

// InvestedCapital returns the original capital invested by 'holder' into
// shares of 'class': the sum of issuance values on or before the date.
func (l *Ledger) InvestedCapital(holder, class string, on Date) Money {
	total := M(0, l.cur)
	for e := range l.entriesAsOf(on) {
		issue, ok := e.(Issue)
		if !ok {
			continue
		}
		if issue.Holder == holder && issue.Class == class {
			total = total.Add(issue.TotalValue())
		}
	}
	return total
}

// Fmt validates every entry against a fresh ledger and returns the
// canonical, chronologically sorted form. It fails on the first invalid
// entry.
func (l *Ledger) Fmt() (*Ledger, error) {
	formatted := NewLedger()
	for _, e := range l.entries {
		valid, err := formatted.Validate(e)
		if err != nil {
			return nil, err
		}
		formatted.Append(valid)
	}
	return formatted, nil
}
