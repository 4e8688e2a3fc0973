package inventory

import (
	"fmt"
	"strings"

	"github.com/bekirdag/propbook/internal/datatable"
)

// MatchQuery reports whether any of fields of row contains query, ignoring
// case. An empty query matches everything.
func MatchQuery(row datatable.Fielder, query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		v, ok := row.Field(f)
		if !ok || v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), q) {
			return true
		}
	}
	return false
}

// Filter keeps rows that match query on fields and whose status is in
// statuses. An empty statuses set keeps every status.
func Filter[T datatable.Fielder](rows []T, query string, statuses map[string]bool, fields ...string) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if len(statuses) > 0 {
			st, _ := r.Field("status")
			if s, _ := st.(string); !statuses[s] {
				continue
			}
		}
		if MatchQuery(r, query, fields...) {
			out = append(out, r)
		}
	}
	return out
}

// EquipmentSearchFields are matched by the equipment search box.
var EquipmentSearchFields = []string{"nsn", "lin", "serial", "nomenclature", "location", "holder"}

// SensitiveSearchFields are matched by the sensitive items search box.
var SensitiveSearchFields = []string{"serial", "nomenclature", "category", "custodian", "vault"}

// ActivitySearchFields are matched by the activity log search box.
var ActivitySearchFields = []string{"actor", "action", "subject", "details"}
