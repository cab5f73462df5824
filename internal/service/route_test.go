package service

import (
	"testing"

	"github.com/civicai/backend/internal/models"
)

func TestNewRoutingTableRejectsBadMappings(t *testing.T) {
	if _, err := NewRoutingTable(nil); err == nil {
		t.Fatal("expected error for empty mapping")
	}
	if _, err := NewRoutingTable(map[string]string{"": "Roads Department"}); err == nil {
		t.Fatal("expected error for empty category")
	}
	if _, err := NewRoutingTable(map[string]string{"pothole": "  "}); err == nil {
		t.Fatal("expected error for empty department")
	}
}

func TestRouteIsCaseInsensitive(t *testing.T) {
	table, err := NewRoutingTable(DefaultCategoryMap())
	if err != nil {
		t.Fatal(err)
	}
	for _, category := range []string{"Pothole", "pothole", "  POTHOLE "} {
		dept, err := table.Route(category)
		if err != nil {
			t.Fatalf("Route(%q): %v", category, err)
		}
		if dept != "Roads Department" {
			t.Fatalf("Route(%q) = %s, want Roads Department", category, dept)
		}
	}
}

func TestRouteUnmappedCategory(t *testing.T) {
	table, err := NewRoutingTable(DefaultCategoryMap())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Route("graffiti"); err == nil {
		t.Fatal("expected error for unmapped category")
	}
}

func TestPickResponder(t *testing.T) {
	pool := []models.Responder{
		{ID: "w1", Name: "Ravi", Department: "Roads Department", Available: false},
		{ID: "w2", Name: "Suresh", Department: "Roads Department", Available: true},
		{ID: "w3", Name: "Anita", Department: "Electrical Department", Available: true},
	}

	picked, fallback, ok := PickResponder("Roads Department", pool)
	if !ok || fallback {
		t.Fatalf("expected available pick, got ok=%v fallback=%v", ok, fallback)
	}
	if picked.ID != "w2" {
		t.Fatalf("expected first available w2, got %s", picked.ID)
	}

	// No available responder: fall back to the first registered one.
	pool[1].Available = false
	picked, fallback, ok = PickResponder("Roads Department", pool)
	if !ok || !fallback {
		t.Fatalf("expected fallback pick, got ok=%v fallback=%v", ok, fallback)
	}
	if picked.ID != "w1" {
		t.Fatalf("expected first registered w1, got %s", picked.ID)
	}

	if _, _, ok := PickResponder("Sanitation Department", pool); ok {
		t.Fatal("expected no pick for department without responders")
	}
}
