package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apexionhq/cx-copilot/internal/errors"
	"github.com/apexionhq/cx-copilot/internal/llm"
	"github.com/apexionhq/cx-copilot/internal/observability"
	"github.com/apexionhq/cx-copilot/internal/schema"
	"github.com/apexionhq/cx-copilot/internal/semantic"
)

const (
	translationTemperature = 0.1
	defaultConfidence      = 0.5
)

const translatorSystemPrompt = `You are a SQL query generator for a customer support database.
Convert the user's natural language question into a single PostgreSQL SELECT statement.

Rules:
- Generate exactly one SELECT statement. Never generate INSERT, UPDATE, DELETE, DROP, ALTER, CREATE, or TRUNCATE.
- Only reference tables and columns that appear in the schema below.
- Join tables through the foreign key relationships declared in the schema.
- Use ILIKE for case-insensitive text matching on names and free-text fields.
- Prefer explicit column lists over SELECT * when the question asks about specific attributes.
- Always end the statement with LIMIT 100 unless the question asks for an aggregate count.

%s
Respond with a JSON object only, no other text:
{"sql": "<the SELECT statement>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>", "tables_used": ["<table>", ...]}`

// Translation is the parsed output of one translation call
type Translation struct {
	SQL        string   `json:"sql"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	TablesUsed []string `json:"tables_used"`
}

// ExampleFinder retrieves past question/SQL pairs similar to a question
type ExampleFinder interface {
	FindSimilar(ctx context.Context, question string, limit int) ([]semantic.Example, error)
}

// Translator converts natural language questions into SELECT statements
// using the LLM, grounded on the static schema and past examples.
type Translator struct {
	client       llm.Client
	schema       *schema.Descriptor
	examples     ExampleFinder
	logger       *observability.Logger
	exampleLimit int
}

// NewTranslator creates a translator. The example finder may be nil, in
// which case translation runs without few-shot guidance.
func NewTranslator(client llm.Client, desc *schema.Descriptor, examples ExampleFinder, exampleLimit int) *Translator {
	if exampleLimit <= 0 {
		exampleLimit = 3
	}
	return &Translator{
		client:       client,
		schema:       desc,
		examples:     examples,
		logger:       observability.NewLogger("translator"),
		exampleLimit: exampleLimit,
	}
}

// Translate produces a candidate SELECT statement for the question. The
// output is untrusted; callers must run it through the safety checker
// before execution.
func (t *Translator) Translate(ctx context.Context, question string) (*Translation, error) {
	prompt := t.buildPrompt(ctx, question)

	completion, err := t.client.Complete(ctx, llm.CompletionRequest{
		System:      fmt.Sprintf(translatorSystemPrompt, t.schema.Prompt()),
		Prompt:      prompt,
		Temperature: translationTemperature,
		ForceJSON:   true,
	})
	if err != nil {
		return nil, errors.NewTranslationError(err)
	}

	translation, err := parseTranslation(completion.Text)
	if err != nil {
		return nil, errors.NewTranslationError(err).
			WithMetadata("raw_response", completion.Text)
	}

	t.logger.Debug(ctx, "Question translated", map[string]interface{}{
		"question":   question,
		"sql":        translation.SQL,
		"confidence": translation.Confidence,
	})

	return translation, nil
}

// buildPrompt assembles the user message: similar past examples first if
// any are available, then the question. Example retrieval failures are
// logged and ignored; translation must not depend on the example store.
func (t *Translator) buildPrompt(ctx context.Context, question string) string {
	var sb strings.Builder

	if t.examples != nil {
		examples, err := t.examples.FindSimilar(ctx, question, t.exampleLimit)
		if err != nil {
			t.logger.Warn(ctx, "Example retrieval failed, translating without examples", map[string]interface{}{
				"error": err.Error(),
			})
		} else if len(examples) > 0 {
			sb.WriteString("Here are similar questions that were answered correctly before:\n\n")
			for _, ex := range examples {
				sb.WriteString(fmt.Sprintf("Question: %s\nSQL: %s\n\n", ex.Question, ex.SQL))
			}
		}
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)

	return sb.String()
}

// parseTranslation decodes the model's JSON response. A missing or
// malformed confidence falls back to a neutral default rather than
// failing the translation.
func parseTranslation(text string) (*Translation, error) {
	text = strings.TrimSpace(text)

	// Tolerate responses wrapped in markdown code fences
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var raw struct {
		SQL        string   `json:"sql"`
		Confidence *float64 `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
		TablesUsed []string `json:"tables_used"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if strings.TrimSpace(raw.SQL) == "" {
		return nil, fmt.Errorf("response contains no SQL statement")
	}

	translation := &Translation{
		SQL:        strings.TrimSpace(raw.SQL),
		Confidence: defaultConfidence,
		Reasoning:  raw.Reasoning,
		TablesUsed: raw.TablesUsed,
	}

	if raw.Confidence != nil && *raw.Confidence >= 0 && *raw.Confidence <= 1 {
		translation.Confidence = *raw.Confidence
	}

	return translation, nil
}
