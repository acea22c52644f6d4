package utils

import (
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// RepairJSON attempts to fix common JSON defects in LLM output: missing
// quotes around keys, single quotes, unclosed arrays/objects, trailing
// commas, comments, and wrapping markdown code blocks.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// RepairJSONOrOriginal runs the repair pass and falls back to the input when
// repair itself fails, leaving the strict parse to decide.
func RepairJSONOrOriginal(raw string) string {
	repaired, err := RepairJSON(raw)
	if err != nil {
		return raw
	}
	return repaired
}
