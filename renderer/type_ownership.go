package renderer

import (
	"strings"

	"github.com/equityledger/captable"
)

// Ownership is the view of an ownership report.
// Numbers are kept in the exact decimal types (Money, Quantity, Percent) so
// that the templates can use their renderers directly.
type Ownership struct {
	// Organization name from the ledger header.
	Organization string `json:"organization"`
	// Date of the report.
	Date captable.Date `json:"date"`
	// Currency is the reporting currency.
	Currency string `json:"currency,omitempty"`
	// TotalAuthorized is the sum of authorized shares over all classes.
	TotalAuthorized captable.Quantity `json:"totalAuthorized"`
	// TotalIssued is the total outstanding share count.
	TotalIssued captable.Quantity `json:"totalIssued"`
	// Classes lists outstanding positions per share class.
	Classes []OwnershipClass `json:"classes"`
	// Holders lists per-shareholder positions, largest first.
	Holders []OwnershipHolder `json:"holders"`
	// Kinds aggregates ownership by shareholder kind.
	Kinds []OwnershipKind `json:"kinds"`
}

// OwnershipClass represents one share class row.
type OwnershipClass struct {
	Name       string             `json:"name"`
	Kind       captable.ClassKind `json:"kind"`
	Authorized captable.Quantity  `json:"authorized"`
	Issued     captable.Quantity  `json:"issued"`
	Percent    captable.Percent   `json:"percent"`
}

// OwnershipHolder represents one shareholder row.
type OwnershipHolder struct {
	Name    string              `json:"name"`
	Kind    captable.HolderKind `json:"kind"`
	Shares  captable.Quantity   `json:"shares"`
	Percent captable.Percent    `json:"percent"`
	Classes string              `json:"classes,omitempty"`
}

// OwnershipKind represents one shareholder-kind row.
type OwnershipKind struct {
	Kind    captable.HolderKind `json:"kind"`
	Holders int                 `json:"holders"`
	Shares  captable.Quantity   `json:"shares"`
	Percent captable.Percent    `json:"percent"`
}

// NewOwnership creates the view from an ownership report.
func NewOwnership(r *captable.OwnershipReport) *Ownership {
	o := &Ownership{
		Organization:    r.Organization,
		Date:            r.Date,
		Currency:        r.Currency,
		TotalAuthorized: r.TotalAuthorized,
		TotalIssued:     r.TotalIssued,
		Classes:         make([]OwnershipClass, 0, len(r.Classes)),
		Holders:         make([]OwnershipHolder, 0, len(r.Holders)),
		Kinds:           make([]OwnershipKind, 0, len(r.HolderKinds)),
	}
	for _, c := range r.Classes {
		o.Classes = append(o.Classes, OwnershipClass{
			Name:       c.Name,
			Kind:       c.Kind,
			Authorized: c.Authorized,
			Issued:     c.Issued,
			Percent:    c.PercentOfTotal,
		})
	}
	for _, h := range r.Holders {
		var classes []string
		for _, hc := range h.Classes {
			classes = append(classes, hc.Class)
		}
		o.Holders = append(o.Holders, OwnershipHolder{
			Name:    h.Name,
			Kind:    h.Kind,
			Shares:  h.Shares,
			Percent: h.Percent,
			Classes: strings.Join(classes, ", "),
		})
	}
	for _, k := range r.HolderKinds {
		o.Kinds = append(o.Kinds, OwnershipKind{
			Kind:    k.Kind,
			Holders: k.Holders,
			Shares:  k.Shares,
			Percent: k.Percent,
		})
	}
	return o
}
