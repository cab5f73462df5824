package utils

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Pune to Mumbai, roughly 120 km
	d := HaversineKm(18.5204, 73.8567, 19.0760, 72.8777)
	if math.Abs(d-120) > 5 {
		t.Fatalf("Pune-Mumbai distance = %f km", d)
	}
	if d := HaversineKm(18.5, 73.8, 18.5, 73.8); d != 0 {
		t.Fatalf("zero distance = %f", d)
	}
}

func TestHashStringToUint64(t *testing.T) {
	if HashStringToUint64("pothole") != HashStringToUint64("pothole") {
		t.Fatal("hash must be deterministic")
	}
	if HashStringToUint64("pothole") == HashStringToUint64("streetlight") {
		t.Fatal("distinct inputs should not collide here")
	}
}
