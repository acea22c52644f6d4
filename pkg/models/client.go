package models

// Client identifies the analyzed company. Registration data is immutable;
// only LastAnalysisDate moves, when an analysis run completes.
type Client struct {
	ID               string `json:"id" db:"id"`
	RazaoSocial      string `json:"razaoSocial" db:"razao_social"`
	NomeFantasia     string `json:"nomeFantasia" db:"nome_fantasia"`
	CNPJ             string `json:"cnpj" db:"cnpj"`
	CNAE             string `json:"cnae" db:"cnae"`
	LastAnalysisDate string `json:"lastAnalysisDate,omitempty" db:"last_analysis_date"`
}

// ChatMessage is one turn of a follow-up conversation. Transcripts are
// append-only and never reordered.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}
