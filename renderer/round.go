package renderer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/equityledger/captable"
)

// RoundSimulation is the view of a round projection.
type RoundSimulation struct {
	// Name of the simulated round, optional.
	Name string `json:"name,omitempty"`
	// Organization name from the ledger header.
	Organization string `json:"organization"`
	// Date of the ownership the projection is based on.
	Date captable.Date `json:"date"`
	// Investment is the cash coming in.
	Investment captable.Money `json:"investment"`
	// PreMoney and PostMoney are the valuations around the round.
	PreMoney  captable.Money `json:"preMoney"`
	PostMoney captable.Money `json:"postMoney"`
	// PricePerShare is the derived round price.
	PricePerShare captable.Money `json:"pricePerShare"`
	// NewShares is the count issued to the incoming investors.
	NewShares captable.Quantity `json:"newShares"`
	// PoolShares is the optional pool top-up count.
	PoolShares captable.Quantity `json:"poolShares"`
	// TotalBefore and TotalAfter are the outstanding counts around the round.
	TotalBefore captable.Quantity `json:"totalBefore"`
	TotalAfter  captable.Quantity `json:"totalAfter"`
	// Rows lists per-holder dilution.
	Rows []RoundRow `json:"rows"`
}

// RoundRow is one holder's position before and after the round.
type RoundRow struct {
	Name     string              `json:"name"`
	Kind     captable.HolderKind `json:"kind"`
	Shares   captable.Quantity   `json:"shares"`
	Before   captable.Percent    `json:"before"`
	After    captable.Percent    `json:"after"`
	Dilution captable.Percent    `json:"dilution"`
}

// NewRoundSimulation creates the view from a round projection.
func NewRoundSimulation(p *captable.RoundProjection) *RoundSimulation {
	v := &RoundSimulation{
		Name:          p.Name,
		Organization:  p.Organization,
		Date:          p.Date,
		Investment:    p.Investment,
		PreMoney:      p.PreMoney,
		PostMoney:     p.PostMoney,
		PricePerShare: p.PricePerShare,
		NewShares:     p.NewShares,
		PoolShares:    p.PoolShares,
		TotalBefore:   p.TotalBefore,
		TotalAfter:    p.TotalAfter,
		Rows:          make([]RoundRow, 0, len(p.Holders)),
	}
	for _, h := range p.Holders {
		name := h.Name
		if h.Synthetic {
			name = "*" + name + "*"
		}
		v.Rows = append(v.Rows, RoundRow{
			Name:     name,
			Kind:     h.Kind,
			Shares:   h.Shares,
			Before:   h.PercentBefore,
			After:    h.PercentAfter,
			Dilution: h.Dilution,
		})
	}
	return v
}

const roundMarkdownTemplate = `# Round Simulation{{ if .Name }} {{ .Name }}{{ end }} for {{ .Organization }} on {{ .Date }}

- Investment: **{{ .Investment }}** at {{ .PricePerShare }} per share
- Valuation: {{ .PreMoney }} pre-money, **{{ .PostMoney }}** post-money
- New shares: {{ .NewShares }}{{ if not .PoolShares.IsZero }}, pool top-up: {{ .PoolShares }}{{ end }}
- Outstanding: {{ .TotalBefore }} before, {{ .TotalAfter }} after

| Holder | Kind | Shares | Before | After | Dilution |
|:---|:---|---:|---:|---:|---:|
{{- range .Rows }}
| {{ .Name }} | {{ .Kind }} | {{ .Shares }} | {{ .Before }} | {{ .After }} | {{ .Dilution.SignedString }} |
{{- end }}
`

// RenderRoundSimulation renders the RoundSimulation struct to a markdown string.
func RenderRoundSimulation(v *RoundSimulation) string {
	tmpl := template.Must(template.New("round").Parse(roundMarkdownTemplate))
	var b strings.Builder
	if err := tmpl.Execute(&b, v); err != nil {
		return fmt.Sprintf("Error executing template: %v", err)
	}
	return b.String()
}
