package prompt

// defaults returns the built-in templates used when no resources directory is
// available. Wording mirrors the production prompts shipped under
// resources/prompts.
func defaults() []*Template {
	return []*Template{
		{
			ID:          ExtractionInstructionID,
			Name:        "Extraction instruction",
			Description: "Instruction part appended after the document parts of an extraction request.",
			Version:     "1",
			Body: `Analise os documentos financeiros da empresa {{.NomeFantasia}}.

MISSÃO PRINCIPAL:
1. DRE: Extraia Receita, Custos, Lucro Bruto, EBITDA, EBIT(LAJIR), EBT(LAIR) e Lucro Líquido.
2. INDICADORES: Calcule margens e índices de eficiência.
{{if .HasBalanco}}3. BALANÇO PATRIMONIAL (CRÍTICO): Os arquivos de Balanço foram enviados. Você DEVE extrair e calcular:
   - Liquidez: Corrente, Seca, Imediata e Geral.
   - Endividamento: Geral, ML/PL, Composição e Dívida Líquida.
   - Estrutura: Capital de Giro Líquido (CGL), Necessidade de Cap. Giro (NCG) e Saldo de Tesouraria.
   - Eficiência: Giro do Ativo e Imobilização do PL.
   - Solvência: Alavancagem Financeira e Cobertura de Capital Próprio.{{else}}3. BALANÇO: Não foram enviados arquivos de Balanço, ignore este campo.{{end}}

Retorne um JSON estrito seguindo o schema fornecido. Não adicione texto fora do JSON.`,
		},
		{
			ID:          ChatPersonaID,
			Name:        "Chat persona",
			Description: "Grounding instruction for the follow-up Q&A session. Embeds the serialized analysis verbatim.",
			Version:     "1",
			Body: `Você é um consultor financeiro sênior de elite da {{.OfficeName}}. Use estes dados reais da empresa: {{.AnalysisJSON}}.
Sempre responda em Português do Brasil. Use Markdown para formatar (tabelas, negrito, listas).
Seja técnico mas acessível. Fale sobre DRE e Balanço (se disponível).
Mantenha todos os números consistentes com a análise acima e apoie simulações de acompanhamento, como cenários de redução de custos, calculando a partir destes mesmos valores.`,
		},
	}
}
