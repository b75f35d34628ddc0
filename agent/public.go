package agent

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/equityledger/captable"
	"github.com/equityledger/captable/docs"
	"github.com/equityledger/captable/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator creates the expert in charge of the conversation.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is a founder or an operator managing the company's cap table.
			He is here primarily to understand ownership, dilution, vesting and exit outcomes.

			Devise a plan of questions to ask each expert and come up with the best response to the user's request.

			The user will assume that you know his cap table, check the ledger first to understand
			the share classes and holders before answering.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewCounsel creates the expert grounded in public venture financing practice.
func NewCounsel() *Expert {
	return &Expert{
		Name: "Counsel",
		Description: `This is an expert startup counsel,
		very well aware of venture financing practice, term sheets, liquidation
		preferences, option plans and the latest market terms.
		Ask the Counsel whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in startup financing law and practice. You can search and find
			anything related to term sheets, funding rounds, equity compensation and market terms.
			You leverage Google Search to ground your assertions in a solid truth.
			You can get the latest news too, and you know how to relate them to the user's request.
				`}}},
		},
	}
}

// NewRegistrar creates the expert in charge of the user's cap table.
func NewRegistrar() *Expert {
	lib := []Function{Ownership, Waterfall, PoolStatus}

	return &Expert{
		Name: "Registrar",
		Description: `This is the Registrar. He is in charge of reading the user's cap table ledger
		and grant book. He can compute ownership breakdowns, exit waterfalls and option pool figures.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are the registrar in charge of the user's cap table.
				You know how to use the Tools to extract relevant information about ownership and grants.
				You are part of a team of experts; yours is everything about the user's cap table. They might ask
				you questions with approximative language, figure out what they meant.

				Use the available tools to get information about the cap table
				  - ownership breakdown per holder and per class
				  - exit waterfall for a given valuation
				  - option pool allocation and grants
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"error": err.Error()},
	}
}

func okResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"output": output},
	}
}

var dateSchema = &genai.Schema{
	Type: genai.TypeString,
	Description: `The date on which to compute the report. Today is the default.
	Otherwise it uses a flexible date format based on YYYY-MM-DD:

	` + must(docs.GetTopic("dates")),
}

// Ownership computes the cap table breakdown on a date.
var Ownership = &Func{
	Decl: &genai.FunctionDeclaration{
		Name: "Ownership",
		Description: `Ownership displays the cap table on a given date: every shareholder with
		its share count and fully diluted percentage, plus per-class and per-kind breakdowns.`,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"date": dateSchema,
			},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "A markdown-formatted cap table report.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		on, err := parseDate(args)
		if err != nil {
			return errResponse(id, "Ownership", err)
		}
		ledger, err := DecodeLedger()
		if err != nil {
			return errResponse(id, "Ownership", err)
		}
		view := renderer.NewOwnership(ledger.NewOwnershipReport(on))
		return okResponse(id, "Ownership", renderer.RenderOwnership(view))
	},
}

// Waterfall distributes an exit valuation over the cap table.
var Waterfall = &Func{
	Decl: &genai.FunctionDeclaration{
		Name: "Waterfall",
		Description: `Waterfall distributes an exit valuation over the cap table: liquidation
		preferences first, by seniority, then the residual pro rata. It shows each holder's
		proceeds and return multiple.`,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"date": dateSchema,
				"valuation": {
					Type:        genai.TypeNumber,
					Description: "The exit valuation to distribute, in the ledger currency.",
				},
			},
			Required: []string{"valuation"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "A markdown-formatted waterfall report.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		on, err := parseDate(args)
		if err != nil {
			return errResponse(id, "Waterfall", err)
		}
		valuation, ok := args["valuation"].(float64)
		if !ok {
			return errResponse(id, "Waterfall", fmt.Errorf("argument 'valuation' is not a number but %T", args["valuation"]))
		}
		ledger, err := DecodeLedger()
		if err != nil {
			return errResponse(id, "Waterfall", err)
		}
		report, err := ledger.NewWaterfallReport(on, captable.M(valuation, ledger.Currency()))
		if err != nil {
			return errResponse(id, "Waterfall", err)
		}
		return okResponse(id, "Waterfall", renderer.RenderWaterfall(renderer.NewWaterfall(report)))
	},
}

// PoolStatus summarizes the option pool and its grants.
var PoolStatus = &Func{
	Decl: &genai.FunctionDeclaration{
		Name: "PoolStatus",
		Description: `PoolStatus displays the option pool accounting: reserved, allocated and
		available shares, and every grant with its vesting status.`,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: map[string]*genai.Schema{},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "A markdown-formatted pool summary.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		book, err := DecodeGrantBook()
		if err != nil {
			return errResponse(id, "PoolStatus", err)
		}
		return okResponse(id, "PoolStatus", renderer.RenderPoolSummary(renderer.NewPoolSummary(book)))
	},
}

// DecodeLedger decodes the ledger from the application's default ledger file.
// If the file does not exist, it returns a new empty ledger.
func DecodeLedger() (*captable.Ledger, error) {
	ledgerFile := "captable.jsonl"
	f, err := os.Open(ledgerFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return captable.NewLedger(), nil
		}
		return nil, fmt.Errorf("could not open ledger file %q: %w", ledgerFile, err)
	}
	defer f.Close()

	ledger, err := captable.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", ledgerFile, err)
	}
	return ledger, nil
}

// DecodeGrantBook decodes the grant book from the application's default file.
func DecodeGrantBook() (*captable.GrantBook, error) {
	grantsFile := "grants.jsonl"
	f, err := os.Open(grantsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open grant book %q: %w", grantsFile, err)
	}
	defer f.Close()
	return captable.DecodeGrantBook(f)
}

func parseDate(args map[string]any) (captable.Date, error) {
	idate, hasDate := args["date"]
	if !hasDate {
		return captable.Today(), nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return captable.Today(), fmt.Errorf("argument 'date' is not a string as expected but %T", idate)
	}

	date, err := captable.ParseDate(sdate)
	if err != nil {
		return captable.Today(), fmt.Errorf("argument 'date' must be a valid date got %q. Below is the doc about the date format\n\n%s", sdate, must(docs.GetTopic("dates")))
	}
	return date, nil
}
