// Package prompt provides a small prompt library for the extraction and chat
// calls. Templates live in hjson resource files and are loaded at runtime, so
// wording can change without a rebuild; hardcoded defaults keep the pipeline
// working when no resources directory is present.
package prompt

import "text/template"

// Template is a reusable prompt with metadata. Body is a Go text/template,
// compiled once at registration.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Body        string `json:"body"`
	Version     string `json:"version"`

	compiled *template.Template
}

// Well-known template ids used by the pipeline.
const (
	ExtractionInstructionID = "extraction.instruction"
	ChatPersonaID           = "chat.persona"
)
