package captable

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger reads a stream of JSONL data from an io.Reader, decodes each
// line into the appropriate entry struct, and returns a sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
		}

		var decoded Entry
		var err error

		switch identifier.Command {
		case CmdInit:
			var e Init
			err = json.Unmarshal(lineBytes, &e)
			decoded = e
		case CmdDeclareClass:
			var e DeclareClass
			err = e.UnmarshalJSON(lineBytes)
			decoded = e
		case CmdIssue:
			var e Issue
			err = e.UnmarshalJSON(lineBytes)
			decoded = e
		case CmdTransfer:
			var e Transfer
			err = e.UnmarshalJSON(lineBytes)
			decoded = e
		case CmdExercise:
			var e Exercise
			err = e.UnmarshalJSON(lineBytes)
			decoded = e
		case CmdConvert:
			var e Convert
			err = e.UnmarshalJSON(lineBytes)
			decoded = e
		case CmdBuyback:
			var e Buyback
			err = e.UnmarshalJSON(lineBytes)
			decoded = e
		case CmdCancel:
			var e Cancel
			err = e.UnmarshalJSON(lineBytes)
			decoded = e
		default:
			return nil, fmt.Errorf("unknown command %q in line %q", identifier.Command, string(lineBytes))
		}
		if err != nil {
			return nil, fmt.Errorf("could not decode %q entry in line %q: %w", identifier.Command, string(lineBytes), err)
		}
		ledger.Append(decoded)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	return ledger, nil
}

// EncodeEntry writes a single entry as one JSON line.
func EncodeEntry(w io.Writer, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("could not marshal %s entry: %w", e.What(), err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("could not write %s entry: %w", e.What(), err)
	}
	return nil
}

// EncodeLedger writes the whole ledger in canonical JSONL form.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for e := range l.AllEntries() {
		if err := EncodeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}
