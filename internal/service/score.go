package service

import (
	"math"

	"github.com/civicai/backend/internal/models"
	"github.com/civicai/backend/internal/utils"
)

// DeriveSeverity maps classifier confidence to a severity level. This
// derivation belongs to the engine, not the classifier.
func DeriveSeverity(confidence int) string {
	switch {
	case confidence > 85:
		return models.SeverityHigh
	case confidence > 78:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func severityWeight(severity string) float64 {
	switch severity {
	case models.SeverityHigh:
		return 0.6
	case models.SeverityMedium:
		return 0.35
	default:
		return 0.15
	}
}

// DistanceFactor rates responder proximity on [0.2, 1]. Without a reporter
// location or a located same-department responder it defaults to 0.5.
func DistanceFactor(lat, lng *float64, department string, pool []models.Responder) float64 {
	if lat == nil || lng == nil {
		return 0.5
	}
	minDist := -1.0
	for _, r := range pool {
		if r.Department != department || r.Lat == nil || r.Lng == nil {
			continue
		}
		d := utils.HaversineKm(*lat, *lng, *r.Lat, *r.Lng)
		if minDist < 0 || d < minDist {
			minDist = d
		}
	}
	if minDist < 0 {
		return 0.5
	}
	factor := 1 / (1 + minDist/5)
	if factor < 0.2 {
		return 0.2
	}
	if factor > 1 {
		return 1
	}
	return factor
}

// Score combines severity (70%), confidence (25%) and responder proximity
// (5%) into a priority score clamped to [1, 10].
func Score(severity string, confidence int, lat, lng *float64, department string, pool []models.Responder) int {
	raw := 0.7*severityWeight(severity) +
		0.25*float64(confidence)/100 +
		0.05*DistanceFactor(lat, lng, department, pool)
	return int(math.Round(math.Min(10, math.Max(1, raw*10))))
}
