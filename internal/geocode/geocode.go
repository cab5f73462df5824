package geocode

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("geocode not found")

// Geocoder resolves a free-text address to coordinates. Used for reports
// submitted without device coordinates; failures are non-fatal to the
// submission pipeline.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lng float64, displayName string, confidence float64, err error)
}

func BuildGeocodeQuery(country string, address string) string {
	country = strings.TrimSpace(country)
	address = strings.TrimSpace(address)
	parts := []string{}
	if address != "" {
		parts = append(parts, address)
	}
	if country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}
