package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuxuan/evalagent/internal/types"
)

// question builds a question carrying one option per label, scored highest
// first the way the parser delivers them.
func question(id string, labels ...string) types.Question {
	q := types.Question{ID: id, Kind: types.KindSingleChoice, IsChoice: true}
	score := float64(len(labels)) * 3
	for _, label := range labels {
		q.Options = append(q.Options, types.Option{
			ID:      id + "-" + label,
			Content: label,
			Score:   score,
		})
		score -= 3
	}
	return q
}

// answerWith returns the pointer to the question's option carrying the label.
func answerWith(t *testing.T, q *types.Question, label string) *types.Option {
	t.Helper()
	for i := range q.Options {
		if q.Options[i].Content == label {
			return &q.Options[i]
		}
	}
	t.Fatalf("question %s has no option labeled %s", q.ID, label)
	return nil
}

func fullScale(id string) types.Question {
	return question(id, LabelExcellent, LabelGood, LabelNeutral, "差")
}

func distinctContents(answers types.AnswerSet) map[string]bool {
	contents := map[string]bool{}
	for _, a := range answers {
		if a != nil {
			contents[a.Content] = true
		}
	}
	return contents
}

func TestEnforce_UniformAnswersGetPerturbed(t *testing.T) {
	questions := []types.Question{fullScale("q1"), fullScale("q2"), fullScale("q3")}
	answers := types.AnswerSet{
		answerWith(t, &questions[0], LabelGood),
		answerWith(t, &questions[1], LabelGood),
		answerWith(t, &questions[2], LabelGood),
	}

	Enforce(answers, questions)

	contents := distinctContents(answers)
	assert.GreaterOrEqual(t, len(contents), 2, "uniform answers must be perturbed")
	// Only the first answer is touched, and it takes the first differently
	// labeled option of its own question.
	assert.Equal(t, LabelExcellent, answers[0].Content)
	assert.Equal(t, LabelGood, answers[1].Content)
	assert.Equal(t, LabelGood, answers[2].Content)
}

func TestEnforce_UniformSkipsUnansweredAndNeutral(t *testing.T) {
	questions := []types.Question{fullScale("q1"), fullScale("q2"), fullScale("q3")}
	answers := types.AnswerSet{
		nil,
		answerWith(t, &questions[1], LabelExcellent),
		answerWith(t, &questions[2], LabelExcellent),
	}

	Enforce(answers, questions)

	assert.Nil(t, answers[0], "enforcement never answers an unanswered question")
	assert.Equal(t, LabelGood, answers[1].Content)
	assert.Equal(t, LabelExcellent, answers[2].Content)
}

func TestEnforce_AllNeutralStaysUntouched(t *testing.T) {
	// A set where every answer carries the neutral label is uniform, but no
	// answer qualifies for replacement; the set is submitted as-is and the
	// total score stays exact.
	questions := []types.Question{fullScale("q1"), fullScale("q2")}
	answers := types.AnswerSet{
		answerWith(t, &questions[0], LabelNeutral),
		answerWith(t, &questions[1], LabelNeutral),
	}

	Enforce(answers, questions)

	assert.Equal(t, LabelNeutral, answers[0].Content)
	assert.Equal(t, LabelNeutral, answers[1].Content)
}

func TestEnforce_VariedAnswersAreLeftAlone(t *testing.T) {
	questions := []types.Question{fullScale("q1"), fullScale("q2")}
	answers := types.AnswerSet{
		answerWith(t, &questions[0], LabelExcellent),
		answerWith(t, &questions[1], LabelGood),
	}

	Enforce(answers, questions)

	assert.Equal(t, LabelExcellent, answers[0].Content)
	assert.Equal(t, LabelGood, answers[1].Content)
}

func TestEnforce_UniformWithoutAlternativeIsNoOp(t *testing.T) {
	questions := []types.Question{
		question("q1", LabelGood),
		question("q2", LabelGood),
	}
	answers := types.AnswerSet{
		answerWith(t, &questions[0], LabelGood),
		answerWith(t, &questions[1], LabelGood),
	}

	Enforce(answers, questions)

	assert.Equal(t, LabelGood, answers[0].Content)
	assert.Equal(t, LabelGood, answers[1].Content)
}

func TestEnforce_PassingFloorFires(t *testing.T) {
	questions := make([]types.Question, 6)
	answers := make(types.AnswerSet, 6)
	for i := range questions {
		questions[i] = question("q", "及格", LabelNeutral, "不及格")
		questions[i].ID = questions[i].ID + string(rune('1'+i))
	}
	for i := range answers {
		answers[i] = answerWith(t, &questions[i], "不及格")
	}
	// Answers differ in nothing but position; make them non-uniform so only
	// the passing rule is exercised.
	answers[5] = answerWith(t, &questions[5], "及格")

	Enforce(answers, questions)

	assert.Equal(t, LabelNeutral, answers[0].Content, "first answered window position switches to the neutral tier")
	for i := 1; i < 5; i++ {
		assert.Equal(t, "不及格", answers[i].Content)
	}
}

func TestEnforce_PassingFloorAlreadySatisfied(t *testing.T) {
	questions := []types.Question{fullScale("q1"), fullScale("q2")}
	answers := types.AnswerSet{
		answerWith(t, &questions[0], LabelGood),
		answerWith(t, &questions[1], "差"),
	}

	Enforce(answers, questions)

	assert.Equal(t, LabelGood, answers[0].Content)
	assert.Equal(t, "差", answers[1].Content)
}

func TestEnforce_PassingFloorSkipsUnanswered(t *testing.T) {
	questions := []types.Question{
		question("q1", "及格", LabelNeutral, "不及格"),
		question("q2", "及格", LabelNeutral, "不及格"),
		question("q3", "及格", "不及格"),
	}
	answers := types.AnswerSet{
		nil,
		answerWith(t, &questions[1], "不及格"),
		answerWith(t, &questions[2], "及格"),
	}

	Enforce(answers, questions)

	assert.Nil(t, answers[0])
	assert.Equal(t, LabelNeutral, answers[1].Content, "first answered position takes the neutral option")
}

func TestEnforce_PassingFloorWithoutNeutralOptionIsNoOp(t *testing.T) {
	// Only the first answered window position is attempted; when its
	// question offers no neutral option, nothing changes.
	questions := []types.Question{
		question("q1", "及格", "不及格"),
		question("q2", "及格", LabelNeutral, "不及格"),
	}
	// 及格 is below the passing-or-above set, so the window has no passing
	// answer, but the mix keeps the uniformity rule out of the way.
	answers := types.AnswerSet{
		answerWith(t, &questions[0], "不及格"),
		answerWith(t, &questions[1], "及格"),
	}

	Enforce(answers, questions)

	assert.Equal(t, "不及格", answers[0].Content)
	assert.Equal(t, "及格", answers[1].Content)
}

func TestEnforce_AllUnansweredWindowIsNoOp(t *testing.T) {
	questions := []types.Question{fullScale("q1"), fullScale("q2")}
	answers := types.AnswerSet{nil, nil}

	Enforce(answers, questions)

	assert.Nil(t, answers[0])
	assert.Nil(t, answers[1])
}

func TestEnforce_Idempotent(t *testing.T) {
	cases := []struct {
		name  string
		setup func() ([]types.Question, types.AnswerSet)
	}{
		{
			name: "uniform perturbation",
			setup: func() ([]types.Question, types.AnswerSet) {
				questions := []types.Question{fullScale("q1"), fullScale("q2"), fullScale("q3")}
				answers := types.AnswerSet{}
				for i := range questions {
					answers = append(answers, answerWith(t, &questions[i], LabelGood))
				}
				return questions, answers
			},
		},
		{
			name: "passing floor fix",
			setup: func() ([]types.Question, types.AnswerSet) {
				questions := []types.Question{
					question("q1", "及格", LabelNeutral, "不及格"),
					question("q2", "及格", "不及格"),
				}
				answers := types.AnswerSet{
					answerWith(t, &questions[0], "不及格"),
					answerWith(t, &questions[1], "及格"),
				}
				return questions, answers
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			questions, answers := tc.setup()

			Enforce(answers, questions)
			once := make([]string, len(answers))
			for i, a := range answers {
				if a != nil {
					once[i] = a.ID
				}
			}

			Enforce(answers, questions)
			for i, a := range answers {
				id := ""
				if a != nil {
					id = a.ID
				}
				require.Equal(t, once[i], id, "second enforcement must not change answer %d", i)
			}
		})
	}
}
