// Package derive computes the chart-ready projections the raw extraction does
// not directly provide. Everything here is pure and recomputed on read; the
// contract ends at producing finite numeric values, formatting belongs to the
// presentation layer.
package derive

import "finanzaviz/pkg/models"

// Multiplicative fallbacks used when the extraction omits EBIT or EBT.
// These are heuristic approximations, not accounting identities, and are
// applied only on absence of the source field.
const (
	ebitFromEbitdaFactor = 0.9
	ebtFromNetFactor     = 1.3
)

// minBarPercent is a presentation floor: a step never renders narrower than
// 3% of the revenue bar, regardless of its true magnitude.
const minBarPercent = 3.0

// AnatomyStep is one step of the revenue-to-net-profit waterfall.
type AnatomyStep struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Derived bool    `json:"derived"`
	Tooltip string  `json:"tooltip"`
}

// RadarScore is one normalized dimension of the score radar, on a 0-100 scale.
type RadarScore struct {
	Subject  string  `json:"subject"`
	Score    float64 `json:"score"`
	FullMark float64 `json:"fullMark"`
}

// Anatomy builds the six-step result waterfall for the first income-statement
// period. Returns nil when the analysis has no periods.
func Anatomy(a *models.FinancialAnalysis) []AnatomyStep {
	if a == nil || len(a.Dre) == 0 {
		return nil
	}
	cur := a.Dre[0]

	ebit, ebitDerived := cur.Ebitda*ebitFromEbitdaFactor, true
	if cur.Lajir != nil {
		ebit, ebitDerived = *cur.Lajir, false
	}
	ebt, ebtDerived := cur.LucroLiquido*ebtFromNetFactor, true
	if cur.Lair != nil {
		ebt, ebtDerived = *cur.Lair, false
	}

	steps := []AnatomyStep{
		{Label: "Receita Bruta", Value: cur.Receita, Tooltip: "Total de vendas de produtos ou serviços antes de impostos e deduções."},
		{Label: "Lucro Bruto", Value: cur.LucroBruto, Tooltip: "Receita líquida menos o custo dos produtos vendidos ou serviços prestados."},
		{Label: "EBITDA", Value: cur.Ebitda, Tooltip: "Lucro antes de juros, impostos, depreciação e amortização. Mede a geração de caixa operacional."},
		{Label: "LAJIR (EBIT)", Value: ebit, Derived: ebitDerived, Tooltip: "Lucro operacional antes dos resultados financeiros e impostos."},
		{Label: "LAIR (EBT)", Value: ebt, Derived: ebtDerived, Tooltip: "Lucro antes da provisão para imposto de renda e contribuição social."},
		{Label: "Lucro Líquido", Value: cur.LucroLiquido, Tooltip: "Resultado final disponível aos sócios após todas as despesas e impostos."},
	}

	for i := range steps {
		steps[i].Percent = barPercent(steps[i].Value, cur.Receita)
	}
	return steps
}

// barPercent maps a step value to its rendered width. Zero revenue renders
// every step at 0, never NaN or infinity.
func barPercent(value, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	pct := value / revenue * 100
	if pct < minBarPercent {
		return minBarPercent
	}
	return pct
}

// Radar builds the five-dimension score radar from the KPI bundle. Missing
// inputs default to 0 before scaling. The efficiency dimension is inverted:
// a lower operating-expense ratio maps to a higher displayed score.
func Radar(kpis models.KPIBundle) []RadarScore {
	return []RadarScore{
		{Subject: "M. Bruta", Score: deref(kpis.MargemBruta) * 100, FullMark: 100},
		{Subject: "M. Líq.", Score: deref(kpis.MargemLiquida) * 100, FullMark: 100},
		{Subject: "M. Oper.", Score: deref(kpis.MargemOperacional) * 100, FullMark: 100},
		{Subject: "M. EBITDA", Score: deref(kpis.MargemEbitda) * 100, FullMark: 100},
		{Subject: "Eficiência", Score: 100 - deref(kpis.EficienciaOperacional)*100, FullMark: 100},
	}
}

// Composition returns the extracted composition breakdown, or an empty slice
// when the service returned none. An empty chart is acceptable; this layer
// synthesizes no substitute.
func Composition(a *models.FinancialAnalysis) []models.CompositionEntry {
	if a == nil || a.Composition == nil {
		return []models.CompositionEntry{}
	}
	return a.Composition
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
