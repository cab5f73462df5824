package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/civicai/backend/internal/models"
	"github.com/civicai/backend/internal/utils"
)

type Mock struct {
	ModelVersion string
}

func (m Mock) Classify(ctx context.Context, r models.Report) (models.Classification, int64, error) {
	start := time.Now()
	h := utils.HashStringToUint64(r.Photo + r.Description + r.Address)

	categories := []string{"Pothole", "Streetlight", "Garbage"}
	category := categories[h%uint64(len(categories))]

	// matches the demo classifier range: 70-99
	confidence := 70 + int(h/7%30)

	size := fmt.Sprintf("%.1f sq m", 0.5+float64(h%31)/10)
	cost := "₹1,500-₹5,000"
	switch category {
	case "Pothole":
		cost = "₹15,000-₹25,000"
	case "Streetlight":
		cost = "₹5,000-₹12,000"
	}

	result := models.Classification{
		Category:     category,
		Confidence:   confidence,
		Size:         size,
		CostEstimate: cost,
		ModelVersion: m.ModelVersion,
	}
	return result, time.Since(start).Milliseconds(), nil
}
