// internal/workers/prospecting/find-prospects/extract.go
package findprospects

import (
	"strings"

	"sales-assistant/internal/models"
)

// fieldCatalog describes the columns the extractor may filter on, in prompt order.
var fieldCatalog = []struct {
	field       string
	description string
}{
	{models.FieldBusinessName, "Business name"},
	{models.FieldPrimaryCategory, "Main industry (e.g., Computer Contractors)"},
	{models.FieldCity, "Business location city"},
	{models.FieldState, "Business location state"},
	{models.FieldSignals, "Contains digital marketing signals like Google Places, SEM, social media activity"},
}

func columnCatalog() string {
	lines := make([]string, len(fieldCatalog))
	for i, c := range fieldCatalog {
		lines[i] = "- " + c.field + ": " + c.description
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt fills the extraction template with the column catalog and the query.
func BuildPrompt(template, query string) string {
	if template == "" {
		template = DefaultPrompt
	}
	return strings.NewReplacer(
		"{columns}", columnCatalog(),
		"{query}", query,
	).Replace(template)
}
