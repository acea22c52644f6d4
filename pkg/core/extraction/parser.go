package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"finanzaviz/pkg/core/utils"
	"finanzaviz/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "finite" guards every numeric leaf: service output carrying NaN or
	// infinity is a validation error, never silently coerced.
	v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// ParseResult validates the raw structured response and stamps the entity
// with a fresh id, the requesting client's id and the current timestamp,
// the three fields the extraction service never supplies. Any parse or
// validation failure returns *MalformedResultError and no entity.
func ParseResult(raw string, clientID string) (*models.FinancialAnalysis, error) {
	// LLM output hygiene: strip code fences, fix trailing commas and friends
	// before the strict parse decides.
	repaired := utils.RepairJSONOrOriginal(raw)

	var analysis models.FinancialAnalysis
	if err := json.Unmarshal([]byte(repaired), &analysis); err != nil {
		return nil, &MalformedResultError{Err: fmt.Errorf("decode: %w", err)}
	}

	if err := validate.Struct(&analysis); err != nil {
		return nil, &MalformedResultError{Err: fmt.Errorf("schema validation: %w", err)}
	}

	analysis.Stamp(uuid.NewString(), clientID, time.Now())
	return &analysis, nil
}
