package llm

import (
	"context"
	"fmt"
	"strings"

	"itsg33/internal/assessment/ports"
	"itsg33/internal/catalog"
)

const classifierSystemPrompt = `You are an ITSG-33 security assessor. Given a description of a system and a list of candidate security controls, identify the controls that clearly do NOT apply to the system as described. Be conservative: only mark a control not applicable when the system description rules it out. Respond with a JSON object of the form {"not_applicable": [{"control_id": "...", "reason": "..."}]}. If every control applies, return {"not_applicable": []}.`

type classifierResponse struct {
	NotApplicable []struct {
		ControlID string `json:"control_id"`
		Reason    string `json:"reason"`
	} `json:"not_applicable"`
}

// ClassifyNotApplicable implements ports.Classifier.
func (c *Client) ClassifyNotApplicable(ctx context.Context, systemContext string, candidates []catalog.Control) ([]ports.ApplicabilityDecision, error) {
	var sb strings.Builder
	sb.WriteString("System description:\n")
	sb.WriteString(systemContext)
	sb.WriteString("\n\nCandidate controls:\n")
	for _, ctrl := range candidates {
		fmt.Fprintf(&sb, "- %s: %s (%s family)\n", ctrl.ID, ctrl.Name, ctrl.Family)
	}

	raw, err := c.complete(ctx, classifierSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var resp classifierResponse
	if err := decodeStrict(raw, &resp); err != nil {
		return nil, err
	}

	out := make([]ports.ApplicabilityDecision, 0, len(resp.NotApplicable))
	for _, d := range resp.NotApplicable {
		out = append(out, ports.ApplicabilityDecision{
			ControlID: strings.TrimSpace(d.ControlID),
			Reason:    strings.TrimSpace(d.Reason),
		})
	}
	c.logger.DebugContext(ctx, "applicability classification complete",
		"candidates", len(candidates), "not_applicable", len(out))
	return out, nil
}
