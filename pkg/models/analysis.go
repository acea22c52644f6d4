package models

import "time"

// DREPoint is one income-statement period as extracted from the source
// documents. Lajir (EBIT) and Lair (EBT) are optional because many small
// company statements do not report them; absence is preserved as nil, never
// coerced to zero.
type DREPoint struct {
	Periodo      string   `json:"periodo" validate:"required"`
	Receita      float64  `json:"receita" validate:"finite"`
	Custos       float64  `json:"custos" validate:"finite"`
	LucroBruto   float64  `json:"lucroBruto" validate:"finite"`
	Despesas     float64  `json:"despesas" validate:"finite"`
	Ebitda       float64  `json:"ebitda" validate:"finite"`
	Lajir        *float64 `json:"lajir,omitempty" validate:"omitempty,finite"`
	Lair         *float64 `json:"lair,omitempty" validate:"omitempty,finite"`
	LucroLiquido float64  `json:"lucroLiquido" validate:"finite"`
}

// CashFlowPoint is one cash-flow period.
type CashFlowPoint struct {
	Periodo          string  `json:"periodo" validate:"required"`
	Entrada          float64 `json:"entrada" validate:"finite"`
	Saida            float64 `json:"saida" validate:"finite"`
	SaldoOperacional float64 `json:"saldoOperacional" validate:"finite"`
	SaldoAcumulado   float64 `json:"saldoAcumulado" validate:"finite"`
}

// LiquidityRatios covers the four classic liquidity indicators.
type LiquidityRatios struct {
	Corrente float64 `json:"corrente" validate:"finite"`
	Seca     float64 `json:"seca" validate:"finite"`
	Imediata float64 `json:"imediata" validate:"finite"`
	Geral    float64 `json:"geral" validate:"finite"`
}

// IndebtednessRatios covers leverage and debt composition.
type IndebtednessRatios struct {
	Geral            float64 `json:"geral" validate:"finite"`
	DividaPatrimonio float64 `json:"dividaPatrimonio" validate:"finite"`
	Composicao       float64 `json:"composicao" validate:"finite"`
	DividaLiquida    float64 `json:"dividaLiquida" validate:"finite"`
}

// CapitalStructure holds the working-capital structure metrics
// (CGL = net working capital, NCG = working-capital requirement,
// SaldoTesouraria = treasury balance).
type CapitalStructure struct {
	CGL             float64 `json:"cgl" validate:"finite"`
	NCG             float64 `json:"ncg" validate:"finite"`
	SaldoTesouraria float64 `json:"saldoTesouraria" validate:"finite"`
}

// EfficiencyRatios covers asset turnover and fixed-asset commitment.
type EfficiencyRatios struct {
	GiroAtivo           float64 `json:"giroAtivo" validate:"finite"`
	GiroAtivoCirculante float64 `json:"giroAtivoCirculante" validate:"finite"`
	ImobilizacaoPL      float64 `json:"imobilizacaoPL" validate:"finite"`
}

// SolvencyRatios covers leverage-driven solvency indicators.
type SolvencyRatios struct {
	AlavancagemFinanceira   float64 `json:"alavancagemFinanceira" validate:"finite"`
	DependenciaTerceiros    float64 `json:"dependenciaTerceiros" validate:"finite"`
	CoberturaCapitalProprio float64 `json:"coberturaCapitalProprio" validate:"finite"`
}

// EquitySummary is an optional year-over-year evolution bundle the model may
// include alongside the five core ratio groups.
type EquitySummary struct {
	CrescimentoAtivo  float64 `json:"crescimentoAtivo" validate:"finite"`
	EvolucaoPL        float64 `json:"evolucaoPL" validate:"finite"`
	ParticipacaoCaixa float64 `json:"participacaoCaixa" validate:"finite"`
}

// BalanceSheetMetrics is present only when balance-sheet files were part of
// the upload. Absence is a valid state, not an error.
type BalanceSheetMetrics struct {
	Liquidez          LiquidityRatios    `json:"liquidez"`
	Endividamento     IndebtednessRatios `json:"endividamento"`
	Estrutura         CapitalStructure   `json:"estrutura"`
	Eficiencia        EfficiencyRatios   `json:"eficiencia"`
	Solvencia         SolvencyRatios     `json:"solvencia"`
	ResumoPatrimonial *EquitySummary     `json:"resumoPatrimonial,omitempty"`
}

// KPIBundle holds the flat indicator set. Only the two core margins are
// mandatory in the extraction contract; a result omitting either fails
// validation instead of coercing the margin to zero. Everything else is
// optional and kept as nil when the model omits it.
type KPIBundle struct {
	MargemBruta            *float64 `json:"margemBruta" validate:"required,finite"`
	MargemLiquida          *float64 `json:"margemLiquida" validate:"required,finite"`
	BurnRate               *float64 `json:"burnRate,omitempty" validate:"omitempty,finite"`
	Runway                 *float64 `json:"runway,omitempty" validate:"omitempty,finite"`
	LiquidezCorrente       *float64 `json:"liquidezCorrente,omitempty" validate:"omitempty,finite"`
	Endividamento          *float64 `json:"endividamento,omitempty" validate:"omitempty,finite"`
	DespesasComerciaisPerc *float64 `json:"despesasComerciaisPerc,omitempty" validate:"omitempty,finite"`
	DespesasAdmPerc        *float64 `json:"despesasAdmPerc,omitempty" validate:"omitempty,finite"`
	EficienciaOperacional  *float64 `json:"eficienciaOperacional,omitempty" validate:"omitempty,finite"`
	MargemOperacional      *float64 `json:"margemOperacional,omitempty" validate:"omitempty,finite"`
	MargemEbitda           *float64 `json:"margemEbitda,omitempty" validate:"omitempty,finite"`
	PontoEquilibrio        *float64 `json:"pontoEquilibrio,omitempty" validate:"omitempty,finite"`
	AlavancagemOperacional *float64 `json:"alavancagemOperacional,omitempty" validate:"omitempty,finite"`
}

// CompositionEntry is one slice of the expense/revenue composition chart.
type CompositionEntry struct {
	Name  string  `json:"name" validate:"required"`
	Value float64 `json:"value" validate:"finite"`
}

// FinancialAnalysis is the durable result entity produced by one extraction
// run. ID, ClientID and Date are stamped by the parser after validation;
// the extraction service never supplies them.
type FinancialAnalysis struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Date     string `json:"date"`

	Dre             []DREPoint           `json:"dre" validate:"required,min=1,dive"`
	FluxoCaixa      []CashFlowPoint      `json:"fluxoCaixa" validate:"required,dive"`
	Balanco         *BalanceSheetMetrics `json:"balanco,omitempty"`
	KPIs            KPIBundle            `json:"kpis"`
	Insights        []string             `json:"insights"`
	Recommendations []string             `json:"recommendations"`
	TaxAnalysis     []string             `json:"taxAnalysis"`
	Composition     []CompositionEntry   `json:"composition,omitempty" validate:"omitempty,dive"`
	ChartNotes      map[string]string    `json:"chartNotes,omitempty"`
}

// Stamp assigns the identity fields exactly once, immediately after a raw
// result passes validation.
func (a *FinancialAnalysis) Stamp(id, clientID string, at time.Time) {
	a.ID = id
	a.ClientID = clientID
	a.Date = at.UTC().Format(time.RFC3339)
}
