package renderer

import (
	"fmt"
	"strings"

	"github.com/equityledger/captable"
)

// LogMarkdown generates a markdown audit log of the ledger entries, one table
// row per entry in chronological order.
func LogMarkdown(l *captable.Ledger) string {
	r := &logRenderer{Builder: &strings.Builder{}}

	r.Printf("# Ledger of %s\n\n", l.Organization())
	r.Printf("| Date | Command | Detail | Memo |\n")
	r.Printf("|:---|:---|:---|:---|\n")
	for e := range l.AllEntries() {
		detail, memo := describeEntry(e)
		r.Printf("| %s | %s | %s | %s |\n", e.When(), e.What(), detail, memo)
	}
	return r.String()
}

// logRenderer formats the output of the log generator into a markdown string.
type logRenderer struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *logRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// describeEntry returns the detail and memo cells for one entry.
func describeEntry(e captable.Entry) (detail, memo string) {
	switch t := e.(type) {
	case captable.Init:
		return fmt.Sprintf("%s (%s)", t.Organization, t.Currency), t.Memo
	case captable.DeclareClass:
		return fmt.Sprintf("%s, %s authorized", t.Name, t.Authorized), t.Memo
	case captable.Issue:
		return fmt.Sprintf("%s %s to %s", t.Shares, t.Class, t.Holder), t.Memo
	case captable.Transfer:
		return fmt.Sprintf("%s %s from %s to %s", t.Shares, t.Class, t.From, t.To), t.Memo
	case captable.Exercise:
		return fmt.Sprintf("%s %s to %s", t.Shares, t.Class, t.Holder), t.Memo
	case captable.Convert:
		return fmt.Sprintf("%s %s of %s into %s", t.Shares, t.FromClass, t.Holder, t.ToClass), t.Memo
	case captable.Buyback:
		return fmt.Sprintf("%s %s from %s", t.Shares, t.Class, t.Holder), t.Memo
	case captable.Cancel:
		return fmt.Sprintf("%s %s of %s", t.Shares, t.Class, t.Holder), t.Memo
	}
	return "", ""
}
