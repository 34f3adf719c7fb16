package app

import (
	"strings"

	"lexrev/api/internal/store"
)

// Submission is an edit as the caller sent it: the full intended state of the
// review, not a delta. The ledger diffs it against the latest stored version
// to decide which facets actually changed.
type Submission struct {
	Title        string
	Summary      string
	Description  string
	Comments     []string
	Risks        []store.RiskInput
	Observations string
}

// ChangeSet is the outcome of diffing a Submission against the latest stored
// version. Each facet bumps its own counter; an all-false ChangeSet with no
// new items means the edit is a no-op.
type ChangeSet struct {
	DocumentChanged bool
	ReviewChanged   bool
	RiskChanged     bool
	NewComments     []string
	NewRisks        []store.RiskInput
}

func (c ChangeSet) Empty() bool {
	return !c.DocumentChanged && !c.ReviewChanged && !c.RiskChanged
}

// ComputeChangeSet diffs a submission against the stored state. Matching is
// exact on trimmed strings: a comment or risk whose trimmed text equals an
// existing row is inherited, anything else is new. Punctuation or wording
// changes therefore count as new items; that is intentional, the ledger never
// edits history.
func ComputeChangeSet(state store.VersionState, sub Submission) ChangeSet {
	var cs ChangeSet

	docChanged := strings.TrimSpace(sub.Title) != strings.TrimSpace(state.Document.Title) ||
		strings.TrimSpace(sub.Summary) != strings.TrimSpace(state.Document.Summary) ||
		strings.TrimSpace(sub.Description) != strings.TrimSpace(state.Document.Description)

	existingComments := make(map[string]struct{}, len(state.Comments))
	for _, comment := range state.Comments {
		existingComments[strings.TrimSpace(comment.Comments)] = struct{}{}
	}
	seenComments := make(map[string]struct{})
	for _, text := range sub.Comments {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		if _, ok := existingComments[trimmed]; ok {
			continue
		}
		if _, ok := seenComments[trimmed]; ok {
			continue
		}
		seenComments[trimmed] = struct{}{}
		cs.NewComments = append(cs.NewComments, trimmed)
	}

	existingRisks := make(map[string]struct{}, len(state.Risks))
	for _, risk := range state.Risks {
		existingRisks[strings.TrimSpace(risk.RiskText)] = struct{}{}
	}
	seenRisks := make(map[string]struct{})
	for _, risk := range sub.Risks {
		trimmed := strings.TrimSpace(risk.RiskText)
		if trimmed == "" {
			continue
		}
		if _, ok := existingRisks[trimmed]; ok {
			continue
		}
		if _, ok := seenRisks[trimmed]; ok {
			continue
		}
		seenRisks[trimmed] = struct{}{}
		cs.NewRisks = append(cs.NewRisks, store.RiskInput{
			RiskText:        trimmed,
			LegalSuggestion: strings.TrimSpace(risk.LegalSuggestion),
			FinalDefinition: strings.TrimSpace(risk.FinalDefinition),
			CategoryID:      risk.CategoryID,
		})
	}

	// Counter routing: new comments bump the review counter, new risks the
	// risk counter (both together bump both). The document counter bumps only
	// when title/summary/description or observations changed AND no comment
	// or risk change is present; otherwise those field updates ride along on
	// the new version without their own bump.
	observationsChanged := strings.TrimSpace(sub.Observations) != strings.TrimSpace(state.Observations)
	cs.ReviewChanged = len(cs.NewComments) > 0
	cs.RiskChanged = len(cs.NewRisks) > 0
	if !cs.ReviewChanged && !cs.RiskChanged && (docChanged || observationsChanged) {
		cs.DocumentChanged = true
	}
	return cs
}
