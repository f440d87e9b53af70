// Package assembly builds the submission payload from a parsed questionnaire
// and its finalized answer set.
package assembly

import (
	"encoding/json"

	"github.com/yuxuan/evalagent/internal/types"
)

// Assemble merges the finalized choice answers with the pass-through
// questions and wraps everything in the submission envelope. The answers
// must be position-aligned with the choice subsequence of questions. The
// total score is the integer-truncated sum of the chosen options' scores;
// unanswered questions contribute nothing.
//
// Header fields are copied verbatim. A missing field aborts assembly with
// MalformedInputError; no partial payload is ever returned.
func Assemble(header *types.Header, questions []types.Question, answers types.AnswerSet) (*types.SubmissionPayload, error) {
	questionnaireID, err := header.Field("wjid")
	if err != nil {
		return nil, err
	}
	taskID, err := header.Field("wjssrwid")
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, chosen := range answers {
		if chosen != nil {
			total += chosen.Score
		}
	}

	records := make([]types.AnswerRecord, 0, len(questions))
	choiceIndex := 0
	var passThrough []types.AnswerRecord
	for _, q := range questions {
		if q.IsChoice {
			selected := ""
			if choiceIndex < len(answers) && answers[choiceIndex] != nil {
				selected = answers[choiceIndex].ID
			}
			records = append(records, types.AnswerRecord{
				Source:          types.AnswerSourceManual,
				QuestionKind:    q.Kind,
				QuestionnaireID: questionnaireID,
				TaskID:          taskID,
				TopicInstanceID: "",
				QuestionID:      q.ID,
				Selections:      []string{selected},
			})
			choiceIndex++
			continue
		}

		topicID := ""
		if len(q.Options) > 0 {
			topicID = q.Options[0].ID
		}
		passThrough = append(passThrough, types.AnswerRecord{
			Source:          types.AnswerSourceManual,
			QuestionKind:    q.Kind,
			QuestionnaireID: questionnaireID,
			TaskID:          taskID,
			TopicInstanceID: topicID,
			QuestionID:      q.ID,
			Selections:      []string{""},
		})
	}
	records = append(records, passThrough...)

	result := types.EvaluationResult{
		TotalScore:     int(total),
		EvalMap:        header.EvalMap,
		Order:          types.ResultOrder,
		Suggestion:     "",
		SelfEvaluation: types.FlagSelfEvaluation,
		Anonymous:      types.FlagAnonymous,
		Answers:        records,
	}

	copies := []struct {
		name string
		dst  *json.RawMessage
	}{
		{"bprdm", &result.EvaluateeCode},
		{"bprmc", &result.EvaluateeName},
		{"kcdm", &result.CourseCode},
		{"kcmc", &result.CourseName},
		{"pjfs", &result.ScoreQuota},
		{"pjid", &result.EvaluationID},
		{"pjlx", &result.EvaluationKind},
		{"pjrdm", &result.EvaluatorCode},
		{"pjrjsdm", &result.EvaluatorRole},
		{"pjrxm", &result.EvaluatorName},
		{"rwh", &result.TaskNumber},
		{"stzjid", &result.TopicSetID},
		{"xhgs", &result.RoundCount},
		{"xnxq", &result.Term},
		{"sqzt", &result.RequestStatus},
		{"yxfz", &result.ValidQuota},
		{"sdrs", &result.ReceivedCount},
		// zsxz mirrors the evaluator role code.
		{"pjrjsdm", &result.RoleGroup},
	}
	for _, c := range copies {
		value, err := header.Field(c.name)
		if err != nil {
			return nil, err
		}
		*c.dst = value
	}
	result.QuestionnaireID = questionnaireID
	result.TaskID = taskID

	return &types.SubmissionPayload{
		EvaluationIDs: []string{},
		Results:       []types.EvaluationResult{result},
		Status:        types.StatusSubmitted,
	}, nil
}
