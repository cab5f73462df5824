package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/civicai/backend/internal/models"
)

type HTTP struct {
	BaseURL string
	Client  *http.Client
}

type requestBody struct {
	Address     string `json:"address"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
	Transcript  string `json:"transcript"`
}

type responseBody struct {
	Category     string `json:"category"`
	Confidence   int    `json:"confidence"`
	Size         string `json:"size"`
	CostEstimate string `json:"cost_estimate"`
	ModelVersion string `json:"model_version"`
}

func (h HTTP) Classify(ctx context.Context, r models.Report) (models.Classification, int64, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 15 * time.Second}
	}

	payload := requestBody{
		Address:     r.Address,
		Description: r.Description,
		Photo:       r.Photo,
		Transcript:  r.VoiceTranscript,
	}
	b, _ := json.Marshal(payload)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/classify", bytes.NewBuffer(b))
	if err != nil {
		return models.Classification{}, 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return models.Classification{}, time.Since(start).Milliseconds(), err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Classification{}, time.Since(start).Milliseconds(), errors.New("classifier service error")
	}

	var out responseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Classification{}, time.Since(start).Milliseconds(), err
	}

	result := models.Classification{
		Category:     out.Category,
		Confidence:   out.Confidence,
		Size:         out.Size,
		CostEstimate: out.CostEstimate,
		ModelVersion: out.ModelVersion,
	}
	return result, time.Since(start).Milliseconds(), nil
}
