package renderer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/equityledger/captable"
)

// GrantVesting is the view of one grant and its vesting schedule.
type GrantVesting struct {
	// ID of the grant.
	ID string `json:"id"`
	// Grantee is the employee the grant belongs to.
	Grantee string `json:"grantee"`
	// Kind is the tax flavor of the grant.
	Kind captable.GrantKind `json:"kind"`
	// Status is the lifecycle state.
	Status captable.GrantStatus `json:"status"`
	// Class is the share class delivered on exercise.
	Class string `json:"class"`
	// Total, Vested, Exercised are the grant counters.
	Total     captable.Quantity `json:"total"`
	Vested    captable.Quantity `json:"vested"`
	Exercised captable.Quantity `json:"exercised"`
	// Exercisable is the vested count not yet exercised.
	Exercisable captable.Quantity `json:"exercisable"`
	// Price is the exercise price per share.
	Price captable.Money `json:"price"`
	// Start and End bound the vesting period.
	Start captable.Date `json:"start"`
	End   captable.Date `json:"end"`
	// Schedule lists the projected vesting events.
	Schedule []captable.VestingEvent `json:"schedule,omitempty"`
}

// NewGrantVesting creates the view from a grant.
func NewGrantVesting(g *captable.Grant) *GrantVesting {
	return &GrantVesting{
		ID:          g.ID,
		Grantee:     g.Grantee,
		Kind:        g.Kind,
		Status:      g.Status,
		Class:       g.Class,
		Total:       g.Total,
		Vested:      g.Vested,
		Exercised:   g.Exercised,
		Exercisable: g.Exercisable(),
		Price:       g.Price,
		Start:       g.Terms.Start,
		End:         g.Terms.End(),
		Schedule:    g.Schedule,
	}
}

const grantVestingMarkdownTemplate = `# Grant {{ .ID }}

{{ .Grantee }} holds a {{ .Kind }} grant of **{{ .Total }}** {{ .Class }} shares, currently {{ .Status }}.

- Vested: {{ .Vested }}, exercised: {{ .Exercised }}, exercisable: **{{ .Exercisable }}**
- Exercise price: {{ .Price }}
- Vesting from {{ .Start }} to {{ .End }}

{{- if .Schedule }}

## Schedule

| Date | Shares | Cumulative | Vested |
|:---|---:|---:|---:|
{{- range .Schedule }}
| {{ .Date }} | {{ .Shares }} | {{ .Cumulative }} | {{ .Percent }} |
{{- end }}
{{- end -}}
`

// RenderGrantVesting renders the GrantVesting struct to a markdown string.
func RenderGrantVesting(v *GrantVesting) string {
	tmpl := template.Must(template.New("vesting").Parse(grantVestingMarkdownTemplate))
	var b strings.Builder
	if err := tmpl.Execute(&b, v); err != nil {
		return fmt.Sprintf("Error executing template: %v", err)
	}
	return b.String()
}

// PoolSummary is the view of the option pool accounting.
type PoolSummary struct {
	// Class is the share class grants draw on.
	Class string `json:"class"`
	// Total, Allocated and Available are the pool counters.
	Total     captable.Quantity `json:"total"`
	Allocated captable.Quantity `json:"allocated"`
	Available captable.Quantity `json:"available"`
	// PercentOfCompany is the pool reserve over the issued shares, optional.
	PercentOfCompany captable.Percent `json:"percentOfCompany,omitempty"`
	// Grants lists the pool's grants in creation order.
	Grants []PoolGrantRow `json:"grants,omitempty"`
}

// PoolGrantRow is one grant line of the pool summary.
type PoolGrantRow struct {
	ID        string               `json:"id"`
	Grantee   string               `json:"grantee"`
	Kind      captable.GrantKind   `json:"kind"`
	Status    captable.GrantStatus `json:"status"`
	Total     captable.Quantity    `json:"total"`
	Vested    captable.Quantity    `json:"vested"`
	Exercised captable.Quantity    `json:"exercised"`
}

// NewPoolSummary creates the view from a grant book.
func NewPoolSummary(b *captable.GrantBook) *PoolSummary {
	s := &PoolSummary{
		Class:     b.Pool().Class,
		Total:     b.Pool().Total,
		Allocated: b.Allocated(),
		Available: b.Available(),
	}
	for g := range b.AllGrants() {
		s.Grants = append(s.Grants, PoolGrantRow{
			ID:        g.ID,
			Grantee:   g.Grantee,
			Kind:      g.Kind,
			Status:    g.Status,
			Total:     g.Total,
			Vested:    g.Vested,
			Exercised: g.Exercised,
		})
	}
	return s
}

const poolMarkdownTemplate = `# Option Pool ({{ .Class }})

Reserved: **{{ .Total }}** shares, allocated: {{ .Allocated }}, available: **{{ .Available }}**
{{- if .PercentOfCompany }} ({{ .PercentOfCompany }} of issued shares){{ end }}.

{{- if .Grants }}

| Grant | Grantee | Kind | Status | Total | Vested | Exercised |
|:---|:---|:---|:---|---:|---:|---:|
{{- range .Grants }}
| {{ .ID }} | {{ .Grantee }} | {{ .Kind }} | {{ .Status }} | {{ .Total }} | {{ .Vested }} | {{ .Exercised }} |
{{- end }}
{{- end -}}
`

// RenderPoolSummary renders the PoolSummary struct to a markdown string.
func RenderPoolSummary(s *PoolSummary) string {
	tmpl := template.Must(template.New("pool").Parse(poolMarkdownTemplate))
	var b strings.Builder
	if err := tmpl.Execute(&b, s); err != nil {
		return fmt.Sprintf("Error executing template: %v", err)
	}
	return b.String()
}
