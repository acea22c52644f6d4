// Package extraction assembles the schema-constrained extraction request and
// validates the structured response into the durable analysis entity.
package extraction

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"finanzaviz/pkg/core/llm"
	"finanzaviz/pkg/core/normalize"
	"finanzaviz/pkg/core/prompt"
	"finanzaviz/pkg/models"
)

// Extractor builds and executes extraction calls against a provider.
type Extractor struct {
	provider    llm.Provider
	model       string
	temperature float32
}

// NewExtractor wires an extractor to a provider and a model name.
func NewExtractor(provider llm.Provider, model string) *Extractor {
	return &Extractor{provider: provider, model: model, temperature: 0.2}
}

// instructionVars parameterizes the extraction instruction template.
type instructionVars struct {
	NomeFantasia string
	HasBalanco   bool
}

// BuildInstruction renders the instruction text for the request. The text
// branches on balance-sheet presence: with balance files it mandates all five
// ratio bundles by name, without them it tells the service to omit the field
// entirely, so the optional schema key is never hallucinated.
func BuildInstruction(client models.Client, hasBalanco bool) (string, error) {
	return prompt.Get().Render(prompt.ExtractionInstructionID, instructionVars{
		NomeFantasia: client.NomeFantasia,
		HasBalanco:   hasBalanco,
	})
}

// BuildParts normalizes both file groups and assembles the ordered request:
// income-statement parts, then balance-sheet parts, then the instruction
// text. Later parts reference "documents above", so the order is part of the
// contract.
func BuildParts(income, balance []normalize.UploadedFile, client models.Client) ([]normalize.RequestPart, error) {
	incomeParts, err := normalize.NormalizeAll(income)
	if err != nil {
		return nil, err
	}
	balanceParts, err := normalize.NormalizeAll(balance)
	if err != nil {
		return nil, err
	}

	instruction, err := BuildInstruction(client, len(balance) > 0)
	if err != nil {
		return nil, fmt.Errorf("render extraction instruction: %w", err)
	}

	parts := make([]normalize.RequestPart, 0, len(incomeParts)+len(balanceParts)+1)
	parts = append(parts, incomeParts...)
	parts = append(parts, balanceParts...)
	parts = append(parts, normalize.RequestPart{Text: instruction})
	return parts, nil
}

// Extract issues one extraction call and returns the raw structured response
// text. Callers guarantee at least one file across the two groups. Provider
// failures surface as *RequestError; file decoding failures keep their
// *normalize.UnreadableError identity.
func (e *Extractor) Extract(ctx context.Context, income, balance []normalize.UploadedFile, client models.Client) (string, error) {
	parts, err := BuildParts(income, balance, client)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("client", client.ID).
		Int("income_files", len(income)).
		Int("balance_files", len(balance)).
		Str("model", e.model).
		Msg("issuing extraction call")

	raw, err := e.provider.GenerateStructured(ctx, llm.StructuredRequest{
		Model:       e.model,
		Parts:       parts,
		Schema:      ResponseSchema(),
		Temperature: e.temperature,
	})
	if err != nil {
		return "", &RequestError{Err: err}
	}
	return raw, nil
}
