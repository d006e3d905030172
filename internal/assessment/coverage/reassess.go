package coverage

import (
	"itsg33/internal/assessment/models"
	"itsg33/internal/catalog"
	"itsg33/pkg/strutil"
)

// Reassess rebuilds coverage from the full merged evidence map while
// preserving human overrides from the previous result. Controls previously
// marked not applicable or rejected keep their entries and metadata exactly
// as they were; every other applicable control is classified fresh. A nil
// prior is treated as an initial assessment.
func Reassess(prior *models.AssessmentCoverage, applicable []catalog.Control, evidence models.EvidenceMap) models.AssessmentCoverage {
	if prior == nil {
		return Compute(applicable, nil, evidence)
	}

	p := prior.Clone()

	var notApplicable []models.ControlCoverageEntry
	preserved := make(map[string]struct{}, len(p.NotApplicable)+len(p.RejectedEvidence))
	for _, e := range p.NotApplicable {
		notApplicable = append(notApplicable, e.Clone())
		preserved[e.ControlID] = struct{}{}
	}

	rejected := make(map[string]models.ControlCoverageEntry, len(p.RejectedEvidence))
	for _, e := range p.RejectedEvidence {
		rejected[e.ControlID] = e.Clone()
		preserved[e.ControlID] = struct{}{}
	}

	// Overridden controls are withheld from classification: their entries
	// carry over as-is, and fresh evidence cannot resurrect evidence a
	// reviewer threw out.
	classifiable := applicable
	if len(preserved) > 0 {
		classifiable = make([]catalog.Control, 0, len(applicable))
		for _, c := range applicable {
			if _, ok := preserved[c.ID]; ok {
				continue
			}
			classifiable = append(classifiable, c)
		}
	}

	next := Compute(classifiable, notApplicable, evidence)
	for _, c := range applicable {
		if e, ok := rejected[c.ID]; ok {
			next.Append(e, models.StatusRejectedEvidence)
		}
	}

	// Notes from earlier runs (e.g. a fail-open applicability default) stay
	// on the coverage object for the life of the assessment.
	next.Notes = strutil.DedupeAndTrim(append(append([]string(nil), p.Notes...), next.Notes...))

	Recompute(&next)
	return next
}
