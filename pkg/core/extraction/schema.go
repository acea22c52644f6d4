package extraction

import "google.golang.org/genai"

// ResponseSchema is the wire contract the extraction service must satisfy.
// dre, fluxoCaixa, kpis, insights, recommendations and taxAnalysis are
// required; balanco and composition are optional and must be omitted when no
// balance-sheet source was given. Every numeric leaf is TypeNumber.
func ResponseSchema() *genai.Schema {
	number := func() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }
	stringArray := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"dre": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"periodo":      {Type: genai.TypeString},
						"receita":      number(),
						"custos":       number(),
						"lucroBruto":   number(),
						"despesas":     number(),
						"ebitda":       number(),
						"lajir":        number(),
						"lair":         number(),
						"lucroLiquido": number(),
					},
				},
			},
			"fluxoCaixa": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"periodo":          {Type: genai.TypeString},
						"entrada":          number(),
						"saida":            number(),
						"saldoOperacional": number(),
						"saldoAcumulado":   number(),
					},
				},
			},
			"balanco": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"liquidez": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"corrente": number(), "seca": number(), "imediata": number(), "geral": number(),
						},
					},
					"endividamento": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"geral": number(), "dividaPatrimonio": number(), "composicao": number(), "dividaLiquida": number(),
						},
					},
					"estrutura": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"cgl": number(), "ncg": number(), "saldoTesouraria": number(),
						},
					},
					"eficiencia": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"giroAtivo": number(), "giroAtivoCirculante": number(), "imobilizacaoPL": number(),
						},
					},
					"solvencia": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"alavancagemFinanceira": number(), "dependenciaTerceiros": number(), "coberturaCapitalProprio": number(),
						},
					},
					"resumoPatrimonial": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"crescimentoAtivo": number(), "evolucaoPL": number(), "participacaoCaixa": number(),
						},
					},
				},
			},
			"kpis": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"margemBruta":            number(),
					"margemLiquida":          number(),
					"burnRate":               number(),
					"runway":                 number(),
					"liquidezCorrente":       number(),
					"endividamento":          number(),
					"despesasComerciaisPerc": number(),
					"despesasAdmPerc":        number(),
					"eficienciaOperacional":  number(),
					"margemOperacional":      number(),
					"margemEbitda":           number(),
					"pontoEquilibrio":        number(),
					"alavancagemOperacional": number(),
				},
				Required: []string{"margemBruta", "margemLiquida"},
			},
			"insights":        stringArray,
			"recommendations": stringArray,
			"taxAnalysis":     stringArray,
			"composition": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":  {Type: genai.TypeString},
						"value": number(),
					},
				},
			},
		},
		Required: []string{"dre", "fluxoCaixa", "kpis", "insights", "recommendations", "taxAnalysis"},
	}
}
