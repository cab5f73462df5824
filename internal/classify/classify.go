package classify

import (
	"context"

	"github.com/civicai/backend/internal/models"
)

// Classifier is the external classification contract: it returns a
// category with a 0-100 confidence plus the elapsed latency in ms.
// Severity is derived by the engine, not here.
type Classifier interface {
	Classify(ctx context.Context, r models.Report) (models.Classification, int64, error)
}
