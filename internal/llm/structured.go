package llm

import (
	"context"
	"encoding/json"

	"github.com/victorzhu443/firstplay-backend/internal/schemas"
)

// GenerateStructured builds a client from f, asks for JSON, validates the
// response against the named embedded schema, and decodes it into out.
// The client is closed before returning.
func GenerateStructured(ctx context.Context, f Factory, tier ModelTier, prompt, schema string, out any) error {
	client, err := f.NewClient(ctx)
	if err != nil {
		return &APICallError{Message: "failed to create LLM client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	text, err := client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return &APICallError{Message: "failed to generate content from LLM", Cause: err}
	}

	doc := []byte(CleanJSONBlock(text))
	if err := schemas.Validate(schema, doc); err != nil {
		return &ParseError{Message: "response does not match " + schema, Cause: err}
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	return nil
}
