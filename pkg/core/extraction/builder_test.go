package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"finanzaviz/pkg/core/llm"
	"finanzaviz/pkg/core/normalize"
	"finanzaviz/pkg/models"
)

// MockProvider implements llm.Provider with overridable behavior.
type MockProvider struct {
	GenerateStructuredFunc func(ctx context.Context, req llm.StructuredRequest) (string, error)
	StartChatFunc          func(ctx context.Context, req llm.ChatRequest) (llm.ChatSession, error)
}

func (m *MockProvider) GenerateStructured(ctx context.Context, req llm.StructuredRequest) (string, error) {
	if m.GenerateStructuredFunc != nil {
		return m.GenerateStructuredFunc(ctx, req)
	}
	return "{}", nil
}

func (m *MockProvider) StartChat(ctx context.Context, req llm.ChatRequest) (llm.ChatSession, error) {
	if m.StartChatFunc != nil {
		return m.StartChatFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

var testClient = models.Client{ID: "client-1", RazaoSocial: "Empresa Exemplo LTDA", NomeFantasia: "Empresa Exemplo"}

func TestBuildInstructionWithBalanceSheet(t *testing.T) {
	text, err := BuildInstruction(testClient, true)
	if err != nil {
		t.Fatalf("BuildInstruction: %v", err)
	}
	if !strings.Contains(text, "Empresa Exemplo") {
		t.Errorf("instruction does not name the company: %q", text)
	}
	for _, bundle := range []string{"Liquidez", "Endividamento", "Estrutura", "Eficiência", "Solvência"} {
		if !strings.Contains(text, bundle) {
			t.Errorf("balance-sheet instruction must mandate the %s bundle", bundle)
		}
	}
	if strings.Contains(text, "ignore este campo") {
		t.Error("balance-sheet instruction must not tell the service to skip the field")
	}
}

func TestBuildInstructionWithoutBalanceSheet(t *testing.T) {
	text, err := BuildInstruction(testClient, false)
	if err != nil {
		t.Fatalf("BuildInstruction: %v", err)
	}
	if !strings.Contains(text, "ignore este campo") {
		t.Errorf("instruction must tell the service to omit the balance field: %q", text)
	}
	if strings.Contains(text, "CRÍTICO") {
		t.Error("no-balance instruction must not mandate the ratio bundles")
	}
}

func TestBuildPartsOrder(t *testing.T) {
	income := []normalize.UploadedFile{
		normalize.NewUploadedFile("dre1.pdf", "application/pdf", []byte("dre-1")),
		normalize.NewUploadedFile("dre2.pdf", "application/pdf", []byte("dre-2")),
	}
	balance := []normalize.UploadedFile{
		normalize.NewUploadedFile("bal.pdf", "application/pdf", []byte("bal-1")),
	}

	parts, err := BuildParts(income, balance, testClient)
	if err != nil {
		t.Fatalf("BuildParts: %v", err)
	}
	if len(parts) != 4 {
		t.Fatalf("got %d parts, want income + balance + instruction = 4", len(parts))
	}
	for i := 0; i < 3; i++ {
		if parts[i].InlineData == nil {
			t.Errorf("part %d should be a document, got text", i)
		}
	}
	last := parts[3]
	if last.InlineData != nil || last.Text == "" {
		t.Fatal("instruction must be the final text part")
	}
	if !strings.Contains(last.Text, "BALANÇO PATRIMONIAL") {
		t.Errorf("instruction should reflect balance presence: %q", last.Text)
	}
}

func TestExtractSendsSchemaConstrainedRequest(t *testing.T) {
	var captured llm.StructuredRequest
	provider := &MockProvider{
		GenerateStructuredFunc: func(_ context.Context, req llm.StructuredRequest) (string, error) {
			captured = req
			return `{"dre":[]}`, nil
		},
	}

	income := []normalize.UploadedFile{normalize.NewUploadedFile("dre.pdf", "application/pdf", []byte("x"))}
	ex := NewExtractor(provider, "gemini-3-flash-preview")
	raw, err := ex.Extract(context.Background(), income, nil, testClient)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if raw != `{"dre":[]}` {
		t.Errorf("raw = %q", raw)
	}
	if captured.Model != "gemini-3-flash-preview" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Schema == nil || captured.Schema.Type != genai.TypeObject {
		t.Error("request must carry the object response schema")
	}
	if captured.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", captured.Temperature)
	}
	if len(captured.Parts) != 2 {
		t.Errorf("got %d parts, want document + instruction", len(captured.Parts))
	}
}

func TestExtractWrapsProviderFailure(t *testing.T) {
	cause := errors.New("upstream 500")
	provider := &MockProvider{
		GenerateStructuredFunc: func(context.Context, llm.StructuredRequest) (string, error) {
			return "", cause
		},
	}

	income := []normalize.UploadedFile{normalize.NewUploadedFile("dre.pdf", "application/pdf", []byte("x"))}
	_, err := NewExtractor(provider, "m").Extract(context.Background(), income, nil, testClient)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error must preserve the cause")
	}
}

func TestExtractKeepsUnreadableIdentity(t *testing.T) {
	called := false
	provider := &MockProvider{
		GenerateStructuredFunc: func(context.Context, llm.StructuredRequest) (string, error) {
			called = true
			return "{}", nil
		},
	}

	income := []normalize.UploadedFile{normalize.NewUploadedFile("broken.xlsx", "", []byte("garbage"))}
	_, err := NewExtractor(provider, "m").Extract(context.Background(), income, nil, testClient)

	var unreadable *normalize.UnreadableError
	if !errors.As(err, &unreadable) {
		t.Fatalf("error type = %T, want *normalize.UnreadableError", err)
	}
	if called {
		t.Error("no extraction call may be issued when normalization fails")
	}
}

func TestResponseSchemaShape(t *testing.T) {
	schema := ResponseSchema()
	for _, key := range []string{"dre", "fluxoCaixa", "balanco", "kpis", "insights", "recommendations", "taxAnalysis", "composition"} {
		if _, ok := schema.Properties[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
	required := strings.Join(schema.Required, ",")
	if strings.Contains(required, "balanco") || strings.Contains(required, "composition") {
		t.Errorf("optional sections must not be required: %v", schema.Required)
	}
	if !strings.Contains(required, "dre") || !strings.Contains(required, "kpis") {
		t.Errorf("core sections must be required: %v", schema.Required)
	}

	kpiRequired := strings.Join(schema.Properties["kpis"].Required, ",")
	if !strings.Contains(kpiRequired, "margemBruta") || !strings.Contains(kpiRequired, "margemLiquida") {
		t.Errorf("the two core margins must be required kpis: %v", schema.Properties["kpis"].Required)
	}
	if strings.Contains(kpiRequired, "burnRate") {
		t.Errorf("optional kpis must not be required: %v", schema.Properties["kpis"].Required)
	}
}
