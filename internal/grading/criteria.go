package grading

import "encoding/json"

// Criteria is the declared partial-credit rule for a question: an ordered
// list of criteria with point values. RequiresAll makes the rule
// all-or-nothing: every criterion must be matched to earn any points.
type Criteria struct {
	Items       []CriterionItem `json:"criteria"`
	RequiresAll bool            `json:"requires_all"`
}

type CriterionItem struct {
	Criterion string  `json:"criterion"`
	Points    float64 `json:"points"`
}

// ParseCriteria decodes the grading_criteria JSONB column. Empty or
// malformed criteria yield nil, which means full-score-or-nothing grading.
func ParseCriteria(raw []byte) *Criteria {
	if len(raw) == 0 {
		return nil
	}
	var c Criteria
	if err := json.Unmarshal(raw, &c); err != nil || len(c.Items) == 0 {
		return nil
	}
	return &c
}

func gradeWithCriteria(q Q, selected []string) Result {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	earned := 0.0
	matchedAll := true
	matchedAny := false
	for _, item := range q.Criteria.Items {
		if chosen[item.Criterion] {
			earned += item.Points
			matchedAny = true
		} else {
			matchedAll = false
		}
	}

	if q.Criteria.RequiresAll {
		if matchedAll {
			return graded(true, min(earned, q.Score))
		}
		return graded(false, 0)
	}

	if earned > q.Score {
		earned = q.Score
	}
	return graded(matchedAny && matchedAll, earned)
}
