// internal/workers/prospecting/find-prospects/filter.go
package findprospects

import (
	"strings"

	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/dataset"
	"sales-assistant/internal/models"
)

// ApplyFilters narrows the store conjunctively. Unknown columns are skipped.
// An empty equals on the primary category is retried as contains.
func ApplyFilters(store *dataset.Store, filters []models.FilterCondition, log logger.Logger) []models.Record {
	rows := store.All()

	for _, f := range filters {
		col, ok := store.Column(f.Field)
		if !ok {
			log.Warn("filter column not found, skipping", map[string]interface{}{"field": f.Field})
			continue
		}
		if !f.Operator.Valid() {
			log.Warn("unsupported filter operator, skipping", map[string]interface{}{"operator": f.Operator})
			continue
		}

		val := strings.ToLower(f.Value)
		next := selectRows(rows, col, f.Operator, val)

		if len(next) == 0 && f.Operator == models.OpEquals && col == models.FieldPrimaryCategory {
			if rescued := selectRows(rows, col, models.OpContains, val); len(rescued) > 0 {
				metrics.FilterFallbacks.WithLabelValues("category_rescue").Inc()
				log.Info("category equals rescued with contains", map[string]interface{}{
					"value":   f.Value,
					"matches": len(rescued),
				})
				next = rescued
			}
		}
		rows = next
	}
	return rows
}

func selectRows(rows []models.Record, col string, op models.FilterOperator, val string) []models.Record {
	out := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		if matches(strings.ToLower(r.Fields[col]), op, val) {
			out = append(out, r)
		}
	}
	return out
}

func matches(field string, op models.FilterOperator, val string) bool {
	switch op {
	case models.OpContains:
		return strings.Contains(field, val)
	case models.OpNotContains:
		return !strings.Contains(field, val)
	case models.OpEquals:
		return field == val
	case models.OpNotEquals:
		return field != val
	default:
		return false
	}
}
