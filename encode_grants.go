package captable

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// The grant book is persisted as JSONL: one pool line followed by one line
// per grant, dispatched on the "record" field. Unlike the ledger, grants
// mutate in place, so the whole file is rewritten on save.

type jgrant struct {
	Record       string          `json:"record"`
	ID           string          `json:"id"`
	Grantee      string          `json:"grantee"`
	Kind         GrantKind       `json:"grantKind"`
	Status       GrantStatus     `json:"status"`
	Class        string          `json:"class"`
	Total        Quantity        `json:"total"`
	Vested       Quantity        `json:"vested"`
	Exercised    Quantity        `json:"exercised"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency,omitempty"`
	Terms        VestingTerms    `json:"vesting"`
	Expiration   Date            `json:"expiration,omitzero"`
	Acceleration string          `json:"acceleration,omitempty"`
	Schedule     []VestingEvent  `json:"schedule,omitempty"`
	Exercises    []ExerciseEvent `json:"exercises,omitempty"`
}

// DecodeGrantBook reads a grant book from a stream of JSONL data.
func DecodeGrantBook(r io.Reader) (*GrantBook, error) {
	scanner := bufio.NewScanner(r)
	var book *GrantBook

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Record string `json:"record"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify record in line %q: %w", string(lineBytes), err)
		}

		switch identifier.Record {
		case "pool":
			var pool Pool
			if err := json.Unmarshal(lineBytes, &pool); err != nil {
				return nil, fmt.Errorf("could not decode pool line %q: %w", string(lineBytes), err)
			}
			if book != nil {
				return nil, fmt.Errorf("duplicate pool line %q: %w", string(lineBytes), ErrInvalidState)
			}
			book = NewGrantBook(pool)
		case "grant":
			if book == nil {
				return nil, fmt.Errorf("grant line before pool line: %w", ErrInvalidState)
			}
			var jg jgrant
			if err := json.Unmarshal(lineBytes, &jg); err != nil {
				return nil, fmt.Errorf("could not decode grant line %q: %w", string(lineBytes), err)
			}
			book.restore(&Grant{
				ID:           jg.ID,
				Grantee:      jg.Grantee,
				Kind:         jg.Kind,
				Status:       jg.Status,
				Class:        jg.Class,
				Total:        jg.Total,
				Vested:       jg.Vested,
				Exercised:    jg.Exercised,
				Price:        M(jg.Price, jg.Currency),
				Terms:        jg.Terms,
				Expiration:   jg.Expiration,
				Acceleration: jg.Acceleration,
				Schedule:     jg.Schedule,
				Exercises:    jg.Exercises,
			})
		default:
			return nil, fmt.Errorf("unknown record %q in line %q", identifier.Record, string(lineBytes))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading grant book: %w", err)
	}
	if book == nil {
		return nil, fmt.Errorf("grant book has no pool line: %w", ErrNotFound)
	}
	return book, nil
}

// EncodeGrantBook writes the grant book in canonical JSONL form.
func EncodeGrantBook(w io.Writer, b *GrantBook) error {
	var pw jsonObjectWriter
	pw.Append("record", "pool")
	pw.Append("class", b.pool.Class)
	pw.Append("total", b.pool.Total)
	data, err := pw.MarshalJSON()
	if err != nil {
		return fmt.Errorf("could not marshal pool: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("could not write pool: %w", err)
	}

	for g := range b.AllGrants() {
		jg := jgrant{
			Record:       "grant",
			ID:           g.ID,
			Grantee:      g.Grantee,
			Kind:         g.Kind,
			Status:       g.Status,
			Class:        g.Class,
			Total:        g.Total,
			Vested:       g.Vested,
			Exercised:    g.Exercised,
			Price:        g.Price.value,
			Currency:     g.Price.cur,
			Terms:        g.Terms,
			Expiration:   g.Expiration,
			Acceleration: g.Acceleration,
			Schedule:     g.Schedule,
			Exercises:    g.Exercises,
		}
		data, err := json.Marshal(jg)
		if err != nil {
			return fmt.Errorf("could not marshal grant %q: %w", g.ID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("could not write grant %q: %w", g.ID, err)
		}
	}
	return nil
}
