package report

import (
	"fmt"
	"strings"

	"github.com/cadfc/gestor/internal/period"
)

// ArtifactName returns the deterministic export file name for a period,
// e.g. "Relatorio_Mensal_3_2024.pdf". It depends only on the selector, so
// re-exporting the same period produces the same name.
func ArtifactName(sel period.Selector) string {
	typeLabel := "Mensal"
	if sel.Type == period.Annual {
		typeLabel = "Anual"
	}
	return fmt.Sprintf("Relatorio_%s_%d_%d.pdf", typeLabel, int(sel.Month), sel.Year)
}

// ArtifactNameWithExt swaps the artifact extension for renderers other
// than the PDF export collaborator.
func ArtifactNameWithExt(sel period.Selector, ext string) string {
	return strings.TrimSuffix(ArtifactName(sel), ".pdf") + "." + strings.TrimPrefix(ext, ".")
}
