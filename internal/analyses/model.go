package analyses

import (
	"time"

	"energydocs-backend/internal/facts"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusPartial    = "partial"
	StatusFailed     = "failed"
)

// Analysis is the durable record of one document's pipeline run. Facts is nil
// until extraction succeeds; Notes accumulates one line per stage-local
// failure and decides the final status.
type Analysis struct {
	ID                       string              `json:"id"`
	OriginalFilename         string              `json:"originalFilename"`
	Status                   string              `json:"status"`
	Notes                    []string            `json:"notes,omitempty"`
	Facts                    *facts.ProjectFacts `json:"facts,omitempty"`
	DeveloperExternalSummary string              `json:"developerExternalSummary,omitempty"`
	OfftakerExternalSummary  string              `json:"offtakerExternalSummary,omitempty"`
	Summary                  string              `json:"summary,omitempty"`
	RiskFlags                []string            `json:"riskFlags"`
	ExtractedTextPreview     string              `json:"extractedTextPreview,omitempty"`
	CreatedAt                time.Time           `json:"createdAt"`
	UpdatedAt                time.Time           `json:"updatedAt"`
}
