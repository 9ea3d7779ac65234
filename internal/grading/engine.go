// Package grading scores individual answers and rolls answer scores up to
// attempt totals. It is deliberately persistence-free: callers hand in the
// question definition and the decoded student payload, and get back a verdict.
package grading

import "strings"

const (
	TypeSingleChoice   = "single_choice"
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
	TypeEssay          = "essay"
)

// Q is the slice of a question the engine needs.
type Q struct {
	Type          string
	Score         float64
	CorrectAnswer interface{} // string for single/true-false/short, []string for multiple
	Criteria      *Criteria
}

// Result of grading one answer. Graded=false means the answer is left for a
// human: IsCorrect stays nil and Score stays 0 until manual grading.
type Result struct {
	Graded     bool
	AutoGraded bool
	IsCorrect  *bool
	Score      float64
}

func ungraded() Result { return Result{} }

func graded(correct bool, score float64) Result {
	return Result{Graded: true, AutoGraded: true, IsCorrect: &correct, Score: score}
}

// Grade scores a single answer. Essay questions are never auto-graded;
// short answers without a key are left for manual grading.
func Grade(q Q, payload interface{}) Result {
	switch q.Type {
	case TypeSingleChoice, TypeTrueFalse:
		key, ok := asString(q.CorrectAnswer)
		if !ok {
			return ungraded()
		}
		got, _ := asString(payload)
		if got == key {
			return graded(true, q.Score)
		}
		return graded(false, 0)

	case TypeMultipleChoice:
		key, ok := asStringSlice(q.CorrectAnswer)
		if !ok {
			return ungraded()
		}
		got, _ := asStringSlice(payload)
		if q.Criteria != nil {
			return gradeWithCriteria(q, got)
		}
		if equalStringSets(got, key) {
			return graded(true, q.Score)
		}
		return graded(false, 0)

	case TypeShortAnswer:
		key, ok := asString(q.CorrectAnswer)
		if !ok || key == "" {
			return ungraded()
		}
		got, _ := asString(payload)
		if strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(key)) {
			return graded(true, q.Score)
		}
		return graded(false, 0)

	default:
		// essay and anything unrecognized waits for a human grader
		return ungraded()
	}
}

// AnswerScore is the per-answer view Totals needs.
type AnswerScore struct {
	Score  float64
	Graded bool
}

// Totals aggregates answer scores into attempt totals. complete reports
// whether every answer has been graded, i.e. the attempt may move to the
// graded status.
func Totals(answers []AnswerScore, totalScore, passScore float64) (total, percentage float64, passed, complete bool) {
	complete = true
	for _, a := range answers {
		total += a.Score
		if !a.Graded {
			complete = false
		}
	}
	if totalScore > 0 {
		percentage = total / totalScore * 100
	}
	passed = total >= passScore
	return total, percentage, passed, complete
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asStringSlice(v interface{}) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]int{}
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, v := range seen {
		if v != 0 {
			return false
		}
	}
	return true
}
