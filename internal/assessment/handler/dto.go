package handler

import (
	"time"

	"github.com/google/uuid"

	"itsg33/internal/assessment/models"
	"itsg33/internal/catalog"
)

type createRequest struct {
	ClientID      string `json:"client_id"`
	ProjectName   string `json:"project_name"`
	SystemContext string `json:"system_context"`
	Profile       int    `json:"profile"`
}

type documentPayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type runRequest struct {
	Documents []documentPayload `json:"documents"`
}

type overrideRequest struct {
	Reason string `json:"reason"`
}

type assessmentSummary struct {
	AssessmentID  uuid.UUID               `json:"assessment_id"`
	ClientID      string                  `json:"client_id"`
	ProjectName   string                  `json:"project_name"`
	Profile       catalog.Profile         `json:"profile"`
	Status        models.AssessmentStatus `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	DocumentCount int                     `json:"document_count"`
	RunCount      int                     `json:"run_count"`

	CoveragePercentage *float64 `json:"coverage_percentage,omitempty"`
}

func toSummary(a *models.Assessment) assessmentSummary {
	s := assessmentSummary{
		AssessmentID:  a.ID,
		ClientID:      a.ClientID,
		ProjectName:   a.ProjectName,
		Profile:       a.Profile,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		DocumentCount: a.DocumentCount,
		RunCount:      len(a.RunHistory),
	}
	if a.Coverage != nil {
		pct := a.Coverage.Summary.CoveragePercentage
		s.CoveragePercentage = &pct
	}
	return s
}

type overrideResponse struct {
	AssessmentID          uuid.UUID             `json:"assessment_id"`
	ControlID             string                `json:"control_id"`
	FromStatus            models.CoverageStatus `json:"from_status"`
	ToStatus              models.CoverageStatus `json:"to_status"`
	NewCoveragePercentage float64               `json:"new_coverage_percentage"`
	NewQualityScore       float64               `json:"new_quality_score"`
}

type familyPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type profilePayload struct {
	Profile     int    `json:"profile"`
	Description string `json:"description"`
}

type runHistoryEntry struct {
	RunID         int            `json:"run_id"`
	CompletedAt   time.Time      `json:"completed_at"`
	DocumentCount int            `json:"document_count"`
	Summary       models.Summary `json:"summary"`
}
