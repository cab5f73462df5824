package memstore

import "github.com/civicai/backend/internal/models"

// Seed loads the demo responder roster so the engine is usable without any
// admin setup. Registration order matters: the router's fallback picks the
// first record per department.
func (s *Store) Seed() {
	s.respondersMu.Lock()
	defer s.respondersMu.Unlock()
	if len(s.responders) > 0 {
		return
	}
	s.responders = []models.Responder{
		{ID: "w1", Name: "Aman Worker", Contact: "+91-9000000001", Department: "Roads Department", Available: true},
		{ID: "w2", Name: "Suresh Electric", Contact: "+91-9000000002", Department: "Electrical Department", Available: true},
		{ID: "w3", Name: "Neha Clean", Contact: "+91-9000000003", Department: "Sanitation Department", Available: true},
		{ID: "w4", Name: "Ravi Fixer", Contact: "+91-9000000004", Department: "Roads Department", Available: false},
		{ID: "w5", Name: "Priya Light", Contact: "+91-9000000005", Department: "Electrical Department", Available: false},
		{ID: "w6", Name: "Vikram Swift", Contact: "+91-9000000006", Department: "Roads Department", Available: true},
		{ID: "w7", Name: "Anita Cleanse", Contact: "+91-9000000007", Department: "Sanitation Department", Available: true},
		{ID: "w8", Name: "Rohan Bolt", Contact: "+91-9000000008", Department: "Electrical Department", Available: true},
		{ID: "w9", Name: "Sunita Sweep", Contact: "+91-9000000009", Department: "Sanitation Department", Available: false},
		{ID: "w10", Name: "Karan Patch", Contact: "+91-9000000010", Department: "Roads Department", Available: true},
		{ID: "c1", Name: "RoadFix Contractors", Contact: "+91-9100000001", Department: "Roads Department", Available: true, Lat: f(28.5), Lng: f(77.07)},
		{ID: "c2", Name: "BrightLights", Contact: "+91-9100000002", Department: "Electrical Department", Available: true, Lat: f(28.49), Lng: f(77.08)},
		{ID: "c3", Name: "CleanCity", Contact: "+91-9100000003", Department: "Sanitation Department", Available: true, Lat: f(28.48), Lng: f(77.06)},
	}
}

func f(v float64) *float64 { return &v }
