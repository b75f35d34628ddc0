package captable

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// this file imports third-party cap-table exports. Vendors disagree on field
// names, so a profile maps their JSON onto ledger entries with jsonpath
// expressions: one path selecting the entry list, and per-entry relative
// paths for each field.

// ImportProfile maps one vendor's JSON export onto ledger entries.
type ImportProfile struct {
	Entries string // Entries selects the list of ownership records.
	Holder  string // Holder selects the shareholder name of a record.
	Kind    string // Kind selects the shareholder kind, optional.
	Class   string // Class selects the share class name.
	Shares  string // Shares selects the signed share count.
	Price   string // Price selects the price per share, optional.
	Date    string // Date selects the effective date.
}

// DefaultImportProfile matches the generic export format
//
//	{"entries":[{"holder":…,"kind":…,"class":…,"shares":…,"price":…,"date":…}]}
var DefaultImportProfile = ImportProfile{
	Entries: "$.entries[:]",
	Holder:  "$.holder",
	Kind:    "$.kind",
	Class:   "$.class",
	Shares:  "$.shares",
	Price:   "$.price",
	Date:    "$.date",
}

// ImportEntries reads a vendor JSON export from 'r' and converts each record
// into a ledger entry using the profile: positive share counts become
// issuances, negative ones buybacks. Entries are returned unvalidated; the
// caller appends them through Ledger.Validate.
func ImportEntries(r io.Reader, profile ImportProfile, currency string) ([]Entry, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse import document: %w", err)
	}

	jval, err := jsonpath.Get(profile.Entries, jobj)
	if err != nil {
		return nil, fmt.Errorf("error selecting entries with %q: %w", profile.Entries, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("path %q did not select a list, got %T", profile.Entries, jval)
	}

	var entries []Entry
	for i, jentry := range jlist {
		holder, err := getString(profile.Holder, jentry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		class, err := getString(profile.Class, jentry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		shares, err := getFloat(profile.Shares, jentry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		dateStr, err := getString(profile.Date, jentry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		day, err := ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		kind := HolderOther
		if profile.Kind != "" {
			if s, err := getString(profile.Kind, jentry); err == nil {
				if k, err := ParseHolderKind(s); err == nil {
					kind = k
				}
			}
		}
		price := M(0, "")
		if profile.Price != "" {
			if v, err := getFloat(profile.Price, jentry); err == nil {
				price = M(v, currency)
			}
		}

		if shares >= 0 {
			entries = append(entries, NewIssue(day, "imported", holder, kind, class, Q(shares), price))
		} else {
			entries = append(entries, NewBuyback(day, "imported", holder, kind, class, Q(-shares), price))
		}
	}
	return entries, nil
}

// getString evaluates a jsonpath against one record and expects a string.
func getString(path string, jobj any) (string, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("path %q is not a string, got %v", path, jval)
	}
	return s, nil
}

// getFloat evaluates a jsonpath against one record and expects a number.
func getFloat(path string, jobj any) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	v, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("path %q is not a number, got %v", path, jval)
	}
	return v, nil
}
