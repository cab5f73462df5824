package service

import (
	"fmt"
	"strings"

	"github.com/civicai/backend/internal/models"
)

// RoutingTable maps issue categories to responsible departments. The table
// is validated at construction: an unmapped category at routing time is a
// configuration error, never a silent default.
type RoutingTable struct {
	departments map[string]string
}

func NewRoutingTable(mapping map[string]string) (*RoutingTable, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("routing table: empty category mapping")
	}
	departments := make(map[string]string, len(mapping))
	for category, dept := range mapping {
		category = strings.ToLower(strings.TrimSpace(category))
		dept = strings.TrimSpace(dept)
		if category == "" || dept == "" {
			return nil, fmt.Errorf("routing table: invalid mapping %q -> %q", category, dept)
		}
		departments[category] = dept
	}
	return &RoutingTable{departments: departments}, nil
}

// DefaultCategoryMap is the demo deployment's fixed table.
func DefaultCategoryMap() map[string]string {
	return map[string]string{
		"pothole":     "Roads Department",
		"streetlight": "Electrical Department",
		"garbage":     "Sanitation Department",
	}
}

func (t *RoutingTable) Route(category string) (string, error) {
	dept, ok := t.departments[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return "", fmt.Errorf("route: unmapped category %q", category)
	}
	return dept, nil
}

// PickResponder selects the department contact for a new issue: the first
// available responder in registration order, or, when none is free, the
// department's first registered responder regardless of availability. Some
// deployments guarantee a named contact even before a live body is
// dispatched, so the fallback is deliberate policy and flagged to the
// caller. ok is false only when the department has no responders at all.
func PickResponder(department string, pool []models.Responder) (picked models.Responder, fallback bool, ok bool) {
	var first *models.Responder
	for i, r := range pool {
		if r.Department != department {
			continue
		}
		if first == nil {
			first = &pool[i]
		}
		if r.Available {
			return r, false, true
		}
	}
	if first == nil {
		return models.Responder{}, false, false
	}
	return *first, true, true
}
