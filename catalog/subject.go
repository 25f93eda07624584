// Package catalog loads and queries the immutable subject catalog: the list
// of syllabus entries a roadmap selects from. Subjects are loaded once per
// session from a static source and never mutated in place; enrichment
// replaces the list wholesale.
package catalog

import "strings"

// Subject is one catalog entry.
type Subject struct {
	ID               string   `json:"id"`
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Credits          int      `json:"credits"`
	Year             int      `json:"year"`     // 1..4
	Semester         int      `json:"semester"` // 1 or 2
	Department       string   `json:"department"`
	Syllabus         []string `json:"syllabus,omitempty"`
	Description      string   `json:"description"`
	Prerequisites    []string `json:"prerequisites,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	LearningOutcomes []string `json:"learning_outcomes,omitempty"`

	// CareerRelevance maps an occupation key (see OccupationKey) to a
	// relevance score in [0,1]. CareerRelevanceReason carries the free-text
	// justification per occupation. Both are optional and typically filled
	// by enrichment.
	CareerRelevance       map[string]float64 `json:"career_relevance,omitempty"`
	CareerRelevanceReason map[string]string  `json:"career_relevance_reason,omitempty"`
}

// OccupationKey normalises a free-text occupation into the lookup key used
// by CareerRelevance: lowercase, whitespace collapsed to underscores.
// "Software Engineer" becomes "software_engineer".
func OccupationKey(occupation string) string {
	fields := strings.Fields(strings.ToLower(occupation))
	return strings.Join(fields, "_")
}

// RelevanceFor returns the subject's relevance score for an occupation.
// The second result is false when no score is recorded; a missing score is
// distinct from zero.
func (s *Subject) RelevanceFor(occupation string) (float64, bool) {
	if s.CareerRelevance == nil {
		return 0, false
	}
	score, ok := s.CareerRelevance[OccupationKey(occupation)]
	return score, ok
}

// MatchesKeyword reports whether the keyword is a case-insensitive substring
// of the subject's name, description, or any of its keywords.
func (s *Subject) MatchesKeyword(keyword string) bool {
	kw := strings.ToLower(keyword)
	if kw == "" {
		return false
	}
	if strings.Contains(strings.ToLower(s.Name), kw) {
		return true
	}
	if strings.Contains(strings.ToLower(s.Description), kw) {
		return true
	}
	for _, k := range s.Keywords {
		if strings.Contains(strings.ToLower(k), kw) {
			return true
		}
	}
	return false
}
