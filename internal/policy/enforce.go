// Package policy adjusts a strategy's answer set so the submitted evaluation
// does not look mechanically generated. Two rules run in order: first the
// anti-uniformity perturbation, then the minimum-passing floor over the
// leading answers. Rule order matters: the first rule's replacement can
// change whether the second rule's condition already holds.
//
// The rules compare the service's option content labels. Tier mapping:
//
//	优秀  excellent
//	良好  good
//	中等  average (the neutral tier)
//	及格  pass
//	不及格 / 差  fail / poor
//
// The passing-or-above set is {中等, 良好, 优秀}.
package policy

import "github.com/yuxuan/evalagent/internal/types"

// Tier labels as delivered by the evaluation service.
const (
	LabelExcellent = "优秀"
	LabelGood      = "良好"
	// LabelNeutral is the designated neutral tier both rules pivot on.
	LabelNeutral = "中等"
)

// passingWindow is how many leading answers the minimum-passing rule
// inspects.
const passingWindow = 5

// passingLabels is the passing-or-above label set.
var passingLabels = map[string]bool{
	LabelNeutral:   true,
	LabelGood:      true,
	LabelExcellent: true,
}

// Enforce applies both rules to the answer set, in place, and returns it.
// Questions must be the same choice-question slice the answers were selected
// from, position-aligned. Neither rule introduces an answer where none
// existed, and applying Enforce to its own output changes nothing.
func Enforce(answers types.AnswerSet, questions []types.Question) types.AnswerSet {
	breakUniformity(answers, questions)
	ensurePassingFloor(answers, questions)
	return answers
}

// breakUniformity perturbs an answer set whose answered questions all carry
// the identical content label. The first answer whose label is not the
// neutral tier is swapped for the first differently labeled option of its
// own question; only that one answer is attempted. An all-neutral set is
// left untouched: every candidate replacement would raise or lower the
// total score, and which way is intended is not defined.
func breakUniformity(answers types.AnswerSet, questions []types.Question) {
	if !uniform(answers) {
		return
	}
	for i, chosen := range answers {
		if chosen == nil || chosen.Content == LabelNeutral {
			continue
		}
		for j := range questions[i].Options {
			if questions[i].Options[j].Content != chosen.Content {
				answers[i] = &questions[i].Options[j]
				break
			}
		}
		return
	}
}

// ensurePassingFloor requires at least one passing-or-above label among the
// first passingWindow answers. When none qualifies, the first answered
// position in the window is switched to its question's neutral-labeled
// option; only that one position is attempted, and it stays unchanged when
// the question offers no neutral option.
func ensurePassingFloor(answers types.AnswerSet, questions []types.Question) {
	limit := len(answers)
	if limit > passingWindow {
		limit = passingWindow
	}
	for i := 0; i < limit; i++ {
		if answers[i] != nil && passingLabels[answers[i].Content] {
			return
		}
	}
	for i := 0; i < limit; i++ {
		if answers[i] == nil {
			continue
		}
		for j := range questions[i].Options {
			if questions[i].Options[j].Content == LabelNeutral {
				answers[i] = &questions[i].Options[j]
				break
			}
		}
		return
	}
}

// uniform reports whether at least one question is answered and every
// answered question carries the same content label.
func uniform(answers types.AnswerSet) bool {
	seen := ""
	answered := false
	for _, chosen := range answers {
		if chosen == nil {
			continue
		}
		if answered && chosen.Content != seen {
			return false
		}
		seen = chosen.Content
		answered = true
	}
	return answered
}
