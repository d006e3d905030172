package llm

import (
	"context"
	"fmt"
	"strings"

	"itsg33/internal/assessment/ports"
	"itsg33/internal/catalog"
)

const extractorSystemPrompt = `You are an ITSG-33 compliance evidence analyst. Given a compliance document and a list of security controls, find every passage that evidences a control. For each finding report:
- control_id: the control the passage evidences
- coverage_level: FULL if the passage demonstrates the control is satisfied, PARTIAL if it addresses part of the control, MENTIONS if it only references the topic
- strength_tier: 1 system-generated output, 2 infrastructure-as-code, 3 automated test results, 4 code-level enforcement, 5 screenshot, 6 video walkthrough, 7 narrative text
- summary: one sentence describing what the passage demonstrates
- excerpt: a short verbatim quote from the document
Respond with a JSON object {"judgements": [...]}. Report nothing for controls the document does not address.`

type extractorResponse struct {
	Judgements []struct {
		ControlID     string `json:"control_id"`
		CoverageLevel string `json:"coverage_level"`
		StrengthTier  int    `json:"strength_tier"`
		Summary       string `json:"summary"`
		Excerpt       string `json:"excerpt"`
	} `json:"judgements"`
}

// ExtractEvidence implements ports.EvidenceExtractor.
func (c *Client) ExtractEvidence(ctx context.Context, doc ports.Document, candidates []catalog.Control) ([]ports.ExtractedJudgement, error) {
	var sb strings.Builder
	sb.WriteString("Controls in scope:\n")
	for _, ctrl := range candidates {
		fmt.Fprintf(&sb, "- %s: %s\n", ctrl.ID, ctrl.Name)
	}
	fmt.Fprintf(&sb, "\nDocument %q:\n%s\n", doc.Name, doc.Content)

	raw, err := c.complete(ctx, extractorSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var resp extractorResponse
	if err := decodeStrict(raw, &resp); err != nil {
		return nil, err
	}

	out := make([]ports.ExtractedJudgement, 0, len(resp.Judgements))
	for _, j := range resp.Judgements {
		out = append(out, ports.ExtractedJudgement{
			ControlID:     strings.TrimSpace(j.ControlID),
			CoverageLevel: strings.ToUpper(strings.TrimSpace(j.CoverageLevel)),
			StrengthTier:  j.StrengthTier,
			Summary:       strings.TrimSpace(j.Summary),
			Excerpt:       strings.TrimSpace(j.Excerpt),
		})
	}
	c.logger.DebugContext(ctx, "evidence extraction complete",
		"document", doc.Name, "judgements", len(out))
	return out, nil
}
