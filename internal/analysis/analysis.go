// Package analysis obtains the AI-written management narrative for a
// reporting period. Every failure mode maps to a fixed fallback Narrative;
// Analyze never returns an error to its caller.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cadfc/gestor/internal/llm"
	"github.com/cadfc/gestor/internal/metrics"
)

// Delimiter separates the four narrative sections in the service response.
const Delimiter = "|||"

const promptTemplate = `Atue como um Analista de Dados Sênior e Consultor Estratégico da %s.
Sua tarefa é escrever um relatório de gestão de alta performance e um roteiro de apresentação oral.

DADOS DO PERÍODO (%s):
%s

Gere uma resposta estruturada EXATAMENTE com as seguintes seções, separadas por "|||".
Use tom profissional, corporativo, direto e elegante. Não use markdown (negrito/itálico) dentro das seções, apenas texto puro.

Seção 1: ROTEIRO DE APRESENTAÇÃO
Escreva um discurso pronto para ser lido pelo líder na reunião. Deve ser envolvente, começar saudando os presentes, destacar as vitórias (números altos), reconhecer desafios (se houver) e terminar com uma mensagem motivacional baseada nos dados. Use 1ª pessoa do plural ("Nós").

|||

Seção 2: RESUMO EXECUTIVO
Um parágrafo denso e formal resumindo o desempenho geral do período. Foco em eficiência e crescimento.

|||

Seção 3: TENDÊNCIAS E ANOMALIAS
Analise a demografia (Homens vs Mulheres vs Adolescentes) e a frequência. Aponte se o engajamento online está alto ou baixo. Identifique padrões.

|||

Seção 4: RECOMENDAÇÕES ESTRATÉGICAS
3 ações práticas e numeradas para a liderança implementar no próximo período visando melhoria dos números.`

// Narrative holds the four report sections plus the raw service response.
// It lives only in memory for the current generation; nothing persists it.
type Narrative struct {
	FullText        string
	Script          string
	Summary         string
	Trends          string
	Recommendations string
}

// Section-position fallbacks for responses shorter than four segments.
var sectionFallbacks = [4]string{
	"Roteiro indisponível.",
	"Resumo indisponível.",
	"Análise indisponível.",
	"Recomendações indisponíveis.",
}

// MissingCredentialNarrative is returned when no service credential is
// configured. No network call is attempted.
func MissingCredentialNarrative() *Narrative {
	return &Narrative{
		FullText:        "Erro: Chave de API não configurada.",
		Script:          "Não foi possível gerar o roteiro. Chave de API ausente ou inválida.",
		Summary:         "Não foi possível gerar o resumo. Verifique as configurações.",
		Trends:          "Indisponível.",
		Recommendations: "Indisponível.",
	}
}

// InsufficientDataNarrative is returned for a period with no records.
// No network call is attempted for vacuous periods.
func InsufficientDataNarrative() *Narrative {
	return &Narrative{
		Script:          "Não há dados suficientes neste período para gerar um roteiro.",
		Summary:         "Nenhum registro encontrado para o período selecionado.",
		Trends:          "Sem dados para análise.",
		Recommendations: "Registre atividades para receber recomendações.",
	}
}

// failureNarrative covers transport and service errors. All four sections
// carry an explicit failure message so no block renders blank.
func failureNarrative() *Narrative {
	return &Narrative{
		Script:          "Erro ao gerar roteiro. Verifique a conexão e a chave de API.",
		Summary:         "Erro na geração do relatório.",
		Trends:          "Erro na geração da análise.",
		Recommendations: "Erro na geração das recomendações.",
	}
}

// Analyzer requests period narratives from a text-generation provider.
type Analyzer struct {
	provider     llm.Provider
	organization string
	maxTokens    int
}

// NewAnalyzer creates an Analyzer. A nil provider is valid and means the
// service is disabled; Analyze then degrades to the credential fallback.
func NewAnalyzer(provider llm.Provider, organization string, maxTokens int) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Analyzer{provider: provider, organization: organization, maxTokens: maxTokens}
}

// Analyze produces the narrative for an aggregated period. It is total:
// whatever happens underneath, the caller gets a fully populated Narrative.
func (a *Analyzer) Analyze(ctx context.Context, summary metrics.Summary, periodLabel string) *Narrative {
	if a.provider == nil || !a.provider.IsConfigured() {
		log.Println("narrative service disabled: missing credential")
		return MissingCredentialNarrative()
	}

	if summary.Empty() {
		log.Printf("no records for %s, skipping narrative call", periodLabel)
		return InsufficientDataNarrative()
	}

	prompt, err := a.buildPrompt(summary, periodLabel)
	if err != nil {
		log.Printf("building narrative prompt: %v", err)
		return failureNarrative()
	}

	text, err := a.provider.Generate(ctx, prompt, a.maxTokens)
	if err != nil {
		log.Printf("narrative service error: %v", err)
		return failureNarrative()
	}

	return parseResponse(text)
}

// promptData is the serialized form of the summary inside the prompt.
type promptData struct {
	Period string `json:"period"`
	metrics.Summary
	ResolvedRateLabel string `json:"counselingResolvedRateLabel"`
}

func (a *Analyzer) buildPrompt(summary metrics.Summary, periodLabel string) (string, error) {
	data, err := json.MarshalIndent(promptData{
		Period:            periodLabel,
		Summary:           summary,
		ResolvedRateLabel: fmt.Sprintf("%.1f%%", summary.ResolvedRate),
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, a.organization, periodLabel, data), nil
}

// parseResponse splits the response on the delimiter and fills missing
// positions with their section fallbacks. It never fails.
func parseResponse(text string) *Narrative {
	parts := strings.Split(text, Delimiter)

	section := func(i int) string {
		if i < len(parts) {
			if s := strings.TrimSpace(parts[i]); s != "" {
				return s
			}
		}
		return sectionFallbacks[i]
	}

	return &Narrative{
		FullText:        text,
		Script:          section(0),
		Summary:         section(1),
		Trends:          section(2),
		Recommendations: section(3),
	}
}
