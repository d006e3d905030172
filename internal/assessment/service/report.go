package service

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"itsg33/internal/assessment/models"
	dErrors "itsg33/pkg/domain-errors"
)

// TierBucket is one row of the evidence quality distribution.
type TierBucket struct {
	Tier              models.StrengthTier `json:"tier"`
	Label             string              `json:"label"`
	MachineVerifiable bool                `json:"machine_verifiable"`
	ControlCount      int                 `json:"control_count"`
}

// FamilyBreakdown summarizes coverage within one control family.
type FamilyBreakdown struct {
	Family        string  `json:"family"`
	Total         int     `json:"total"`
	FullCoverage  int     `json:"full_coverage"`
	Partial       int     `json:"partial_coverage"`
	Missing       int     `json:"no_coverage"`
	NotApplicable int     `json:"not_applicable"`
	Rejected      int     `json:"rejected_evidence"`
	CoveragePct   float64 `json:"coverage_percentage"`
}

// QualityReport is the evidence quality view of a completed assessment:
// how strong the evidence is, not just how much of it there is.
type QualityReport struct {
	AssessmentID     uuid.UUID         `json:"assessment_id"`
	Summary          models.Summary    `json:"summary"`
	TierDistribution []TierBucket      `json:"tier_distribution"`
	Families         []FamilyBreakdown `json:"families"`
	Recommendations  []string          `json:"recommendations,omitempty"`
	Notes            []string          `json:"notes,omitempty"`
}

// Quality builds the quality report for a completed assessment. Only
// controls with evidence contribute to the tier distribution; each control
// counts once, at its best tier.
func (s *Service) Quality(ctx context.Context, id uuid.UUID) (*QualityReport, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Coverage == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState,
			"assessment has no coverage yet, run it first")
	}
	cov := a.Coverage

	byTier := make(map[models.StrengthTier]int)
	for _, entry := range cov.FullCoverage {
		byTier[entry.BestStrengthTier]++
	}
	for _, entry := range cov.PartialCoverage {
		byTier[entry.BestStrengthTier]++
	}

	var tiers []TierBucket
	for t := models.TierSystemGenerated; t <= models.TierNarrative; t++ {
		count := byTier[t]
		if count == 0 {
			continue
		}
		tiers = append(tiers, TierBucket{
			Tier:              t,
			Label:             t.Label(),
			MachineVerifiable: t.MachineVerifiable(),
			ControlCount:      count,
		})
	}

	return &QualityReport{
		AssessmentID:     a.ID,
		Summary:          cov.Summary,
		TierDistribution: tiers,
		Families:         familyBreakdowns(cov),
		Recommendations:  cov.Recommendations,
		Notes:            cov.Notes,
	}, nil
}

func familyBreakdowns(cov *models.AssessmentCoverage) []FamilyBreakdown {
	byFamily := make(map[string]*FamilyBreakdown)
	get := func(entry models.ControlCoverageEntry) *FamilyBreakdown {
		key := string(entry.Family)
		fb, ok := byFamily[key]
		if !ok {
			fb = &FamilyBreakdown{Family: key}
			byFamily[key] = fb
		}
		return fb
	}

	for _, e := range cov.FullCoverage {
		fb := get(e)
		fb.Total++
		fb.FullCoverage++
	}
	for _, e := range cov.PartialCoverage {
		fb := get(e)
		fb.Total++
		fb.Partial++
	}
	for _, e := range cov.NoCoverage {
		fb := get(e)
		fb.Total++
		fb.Missing++
	}
	for _, e := range cov.NotApplicable {
		fb := get(e)
		fb.Total++
		fb.NotApplicable++
	}
	for _, e := range cov.RejectedEvidence {
		fb := get(e)
		fb.Total++
		fb.Rejected++
	}

	out := make([]FamilyBreakdown, 0, len(byFamily))
	for _, fb := range byFamily {
		effective := fb.Total - fb.NotApplicable
		if effective > 0 {
			fb.CoveragePct = round1(float64(fb.FullCoverage)+0.5*float64(fb.Partial), effective)
		}
		out = append(out, *fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Family < out[j].Family })
	return out
}

func round1(covered float64, effective int) float64 {
	pct := covered / float64(effective) * 100
	return math.Round(pct*10) / 10
}

// History returns the run snapshots for an assessment, oldest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]models.RunRecord, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.RunHistory, nil
}
