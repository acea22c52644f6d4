package derive

import (
	"math"
	"testing"

	"finanzaviz/pkg/models"
)

func f64(v float64) *float64 { return &v }

func baseAnalysis() *models.FinancialAnalysis {
	return &models.FinancialAnalysis{
		Dre: []models.DREPoint{
			{
				Periodo:      "2025-Q1",
				Receita:      10000,
				Custos:       4000,
				LucroBruto:   6000,
				Despesas:     2000,
				Ebitda:       500,
				LucroLiquido: 1000,
			},
		},
	}
}

func TestAnatomyUsesExtractedEBITAndEBT(t *testing.T) {
	a := baseAnalysis()
	a.Dre[0].Lajir = f64(3500)
	a.Dre[0].Lair = f64(3200)

	steps := Anatomy(a)
	if len(steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(steps))
	}

	ebit := steps[3]
	if ebit.Value != 3500 || ebit.Derived {
		t.Errorf("EBIT step = {%.1f derived=%v}, want {3500 derived=false}", ebit.Value, ebit.Derived)
	}
	ebt := steps[4]
	if ebt.Value != 3200 || ebt.Derived {
		t.Errorf("EBT step = {%.1f derived=%v}, want {3200 derived=false}", ebt.Value, ebt.Derived)
	}
}

func TestAnatomyFallbacksWhenEBITAndEBTMissing(t *testing.T) {
	a := baseAnalysis() // ebitda=500, lucroLiquido=1000, no lajir/lair

	steps := Anatomy(a)

	ebit := steps[3]
	if math.Abs(ebit.Value-450) > 1e-9 || !ebit.Derived {
		t.Errorf("EBIT fallback = {%.2f derived=%v}, want {450.00 derived=true}", ebit.Value, ebit.Derived)
	}
	ebt := steps[4]
	if math.Abs(ebt.Value-1300) > 1e-9 || !ebt.Derived {
		t.Errorf("EBT fallback = {%.2f derived=%v}, want {1300.00 derived=true}", ebt.Value, ebt.Derived)
	}
}

func TestAnatomyZeroValueIsNotMissing(t *testing.T) {
	a := baseAnalysis()
	a.Dre[0].Lajir = f64(0)

	steps := Anatomy(a)
	if steps[3].Value != 0 || steps[3].Derived {
		t.Errorf("explicit zero EBIT must be kept, got {%.1f derived=%v}", steps[3].Value, steps[3].Derived)
	}
}

func TestAnatomyBarFloor(t *testing.T) {
	a := baseAnalysis()
	a.Dre[0].Ebitda = 50 // 0.5% of revenue, below the floor

	steps := Anatomy(a)
	if steps[2].Percent != 3.0 {
		t.Errorf("tiny step percent = %.2f, want floor 3.00", steps[2].Percent)
	}
	if steps[0].Percent != 100 {
		t.Errorf("revenue step percent = %.2f, want 100", steps[0].Percent)
	}
}

func TestAnatomyZeroRevenue(t *testing.T) {
	a := baseAnalysis()
	a.Dre[0].Receita = 0

	for i, s := range Anatomy(a) {
		if s.Percent != 0 {
			t.Errorf("step %d percent = %v, want 0 for zero revenue", i, s.Percent)
		}
		if math.IsNaN(s.Percent) || math.IsInf(s.Percent, 0) {
			t.Errorf("step %d percent is not finite", i)
		}
	}
}

func TestAnatomyEmpty(t *testing.T) {
	if got := Anatomy(nil); got != nil {
		t.Errorf("Anatomy(nil) = %v, want nil", got)
	}
	if got := Anatomy(&models.FinancialAnalysis{}); got != nil {
		t.Errorf("Anatomy(no periods) = %v, want nil", got)
	}
}

func TestRadarInvertsEfficiency(t *testing.T) {
	kpis := models.KPIBundle{
		MargemBruta:           f64(0.6),
		MargemLiquida:         f64(0.1),
		MargemOperacional:     f64(0.25),
		MargemEbitda:          f64(0.3),
		EficienciaOperacional: f64(0.3),
	}

	scores := Radar(kpis)
	if len(scores) != 5 {
		t.Fatalf("expected 5 dimensions, got %d", len(scores))
	}
	if scores[4].Subject != "Eficiência" {
		t.Fatalf("last dimension = %q, want Eficiência", scores[4].Subject)
	}
	if math.Abs(scores[4].Score-70) > 1e-9 {
		t.Errorf("efficiency score = %.2f, want 70 (inverted from 0.3)", scores[4].Score)
	}
	if scores[0].Score != 60 || scores[1].Score != 10 {
		t.Errorf("margin scores = %.1f/%.1f, want 60/10", scores[0].Score, scores[1].Score)
	}
}

func TestRadarMissingKPIsDefaultToZero(t *testing.T) {
	scores := Radar(models.KPIBundle{MargemBruta: f64(0.5), MargemLiquida: f64(0.2)})
	if scores[2].Score != 0 || scores[3].Score != 0 {
		t.Errorf("missing margins scored %.1f/%.1f, want 0/0", scores[2].Score, scores[3].Score)
	}
	// Missing efficiency ratio means a perfect inverted score.
	if scores[4].Score != 100 {
		t.Errorf("missing efficiency scored %.1f, want 100", scores[4].Score)
	}
	for _, s := range scores {
		if s.FullMark != 100 {
			t.Errorf("dimension %q fullMark = %v, want 100", s.Subject, s.FullMark)
		}
	}
}

func TestCompositionFallback(t *testing.T) {
	got := Composition(&models.FinancialAnalysis{})
	if got == nil || len(got) != 0 {
		t.Errorf("Composition(absent) = %v, want empty non-nil slice", got)
	}

	entries := []models.CompositionEntry{{Name: "Custos", Value: 4000}}
	got = Composition(&models.FinancialAnalysis{Composition: entries})
	if len(got) != 1 || got[0].Name != "Custos" {
		t.Errorf("Composition(present) = %v, want the extracted entries", got)
	}
}
