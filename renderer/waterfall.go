package renderer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/equityledger/captable"
)

// Waterfall is the view of an exit waterfall report.
type Waterfall struct {
	// Organization name from the ledger header.
	Organization string `json:"organization"`
	// Date of the ownership the waterfall is computed on.
	Date captable.Date `json:"date"`
	// Valuation is the exit valuation being distributed.
	Valuation captable.Money `json:"valuation"`
	// TotalDistributed is the sum of all proceeds.
	TotalDistributed captable.Money `json:"totalDistributed"`
	// ResidualPerShare is the uniform residual price per share.
	ResidualPerShare captable.Money `json:"residualPerShare"`
	// Rows lists per-holder proceeds, largest first.
	Rows []WaterfallRow `json:"rows"`
}

// WaterfallRow is one holder's share of the proceeds.
type WaterfallRow struct {
	Holder     string              `json:"holder"`
	Kind       captable.HolderKind `json:"kind"`
	Shares     captable.Quantity   `json:"shares"`
	Invested   captable.Money      `json:"invested"`
	Preference captable.Money      `json:"preference"`
	Proceeds   captable.Money      `json:"proceeds"`
	Multiple   string              `json:"multiple,omitempty"`
}

// NewWaterfall creates the view from a waterfall report.
func NewWaterfall(r *captable.WaterfallReport) *Waterfall {
	w := &Waterfall{
		Organization:     r.Organization,
		Date:             r.Date,
		Valuation:        r.Valuation,
		TotalDistributed: r.TotalDistributed,
		ResidualPerShare: r.ResidualPerShare,
		Rows:             make([]WaterfallRow, 0, len(r.Distributions)),
	}
	for _, d := range r.Distributions {
		row := WaterfallRow{
			Holder:     d.Holder,
			Kind:       d.Kind,
			Shares:     d.Shares,
			Invested:   d.InvestedCapital,
			Preference: d.Preference,
			Proceeds:   d.Proceeds,
		}
		if d.Multiple != 0 {
			row.Multiple = fmt.Sprintf("%.2fx", d.Multiple)
		}
		w.Rows = append(w.Rows, row)
	}
	return w
}

const waterfallMarkdownTemplate = `# Exit Waterfall of {{ .Organization }} on {{ .Date }}

Exit valuation: **{{ .Valuation }}**, distributed: **{{ .TotalDistributed }}**
{{- if not .ResidualPerShare.IsZero }}, residual per share: {{ .ResidualPerShare }}{{ end }}.

{{- if .Rows }}

| Holder | Kind | Shares | Invested | Preference | Proceeds | Multiple |
|:---|:---|---:|---:|---:|---:|---:|
{{- range .Rows }}
| {{ .Holder }} | {{ .Kind }} | {{ .Shares }} | {{ .Invested }} | {{ .Preference }} | {{ .Proceeds }} | {{ .Multiple }} |
{{- end }}
{{- end -}}
`

// RenderWaterfall renders the Waterfall struct to a markdown string using a text/template.
func RenderWaterfall(w *Waterfall) string {
	tmpl := template.Must(template.New("waterfall").Parse(waterfallMarkdownTemplate))
	var b strings.Builder
	if err := tmpl.Execute(&b, w); err != nil {
		return fmt.Sprintf("Error executing template: %v", err)
	}
	return b.String()
}
