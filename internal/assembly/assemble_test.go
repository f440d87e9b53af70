package assembly

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuxuan/evalagent/internal/types"
)

var headerFieldNames = []string{
	"bprdm", "bprmc", "kcdm", "kcmc", "pjfs", "pjid", "pjlx",
	"pjrdm", "pjrjsdm", "pjrxm", "rwh", "stzjid", "wjid", "wjssrwid",
	"xhgs", "xnxq", "sqzt", "yxfz", "sdrs",
}

func sampleHeader() *types.Header {
	fields := map[string]json.RawMessage{}
	for _, name := range headerFieldNames {
		fields[name] = json.RawMessage(`"` + name + `-value"`)
	}
	return &types.Header{
		Fields:  fields,
		EvalMap: json.RawMessage(`{"mode":"standard"}`),
	}
}

func choiceQuestion(id string, scores ...float64) types.Question {
	q := types.Question{ID: id, Kind: types.KindSingleChoice, IsChoice: true}
	for i, score := range scores {
		q.Options = append(q.Options, types.Option{
			ID:      id + "-o" + string(rune('1'+i)),
			Content: "label",
			Score:   score,
		})
	}
	return q
}

func TestAssemble_TotalScoreTruncates(t *testing.T) {
	questions := []types.Question{
		choiceQuestion("q1", 4.5),
		choiceQuestion("q2", 4.4),
		choiceQuestion("q3", 10),
	}
	answers := types.AnswerSet{
		&questions[0].Options[0],
		&questions[1].Options[0],
		nil, // unanswered contributes nothing
	}

	payload, err := Assemble(sampleHeader(), questions, answers)
	require.NoError(t, err)
	require.Len(t, payload.Results, 1)
	assert.Equal(t, 8, payload.Results[0].TotalScore, "4.5+4.4 truncates to 8")
}

func TestAssemble_ChoiceRecords(t *testing.T) {
	questions := []types.Question{
		choiceQuestion("q1", 10, 7),
		choiceQuestion("q2", 10, 7),
	}
	answers := types.AnswerSet{&questions[0].Options[1], nil}

	payload, err := Assemble(sampleHeader(), questions, answers)
	require.NoError(t, err)

	records := payload.Results[0].Answers
	require.Len(t, records, 2)

	assert.Equal(t, types.AnswerSourceManual, records[0].Source)
	assert.Equal(t, types.KindSingleChoice, records[0].QuestionKind)
	assert.Equal(t, "q1", records[0].QuestionID)
	assert.Equal(t, "", records[0].TopicInstanceID)
	assert.Equal(t, []string{"q1-o2"}, records[0].Selections)

	assert.Equal(t, []string{""}, records[1].Selections, "unanswered choice question submits an empty selection")
}

func TestAssemble_PassThroughRecords(t *testing.T) {
	topic := types.Question{
		ID:   "q2",
		Kind: "6",
		Options: []types.Option{
			{ID: "topic-1", Content: "teaching", Score: 0},
			{ID: "topic-2", Content: "unused", Score: 0},
		},
	}
	bare := types.Question{ID: "q3", Kind: "2"}
	questions := []types.Question{
		choiceQuestion("q1", 10),
		topic,
		bare,
	}
	answers := types.AnswerSet{&questions[0].Options[0]}

	payload, err := Assemble(sampleHeader(), questions, answers)
	require.NoError(t, err)

	records := payload.Results[0].Answers
	require.Len(t, records, 3)

	// Choice records come first, pass-through entries after.
	assert.Equal(t, "q1", records[0].QuestionID)

	assert.Equal(t, "q2", records[1].QuestionID)
	assert.Equal(t, "6", records[1].QuestionKind)
	assert.Equal(t, "topic-1", records[1].TopicInstanceID, "topic id is the first option's id")
	assert.Equal(t, []string{""}, records[1].Selections)

	assert.Equal(t, "q3", records[2].QuestionID)
	assert.Equal(t, "", records[2].TopicInstanceID, "no options means an empty topic id")
}

func TestAssemble_HeaderCopiedVerbatim(t *testing.T) {
	header := sampleHeader()
	header.Fields["yxfz"] = json.RawMessage(`12.5`)

	questions := []types.Question{choiceQuestion("q1", 10)}
	answers := types.AnswerSet{&questions[0].Options[0]}

	payload, err := Assemble(header, questions, answers)
	require.NoError(t, err)

	result := payload.Results[0]
	assert.Equal(t, `"bprdm-value"`, string(result.EvaluateeCode))
	assert.Equal(t, `12.5`, string(result.ValidQuota))
	assert.Equal(t, string(result.EvaluatorRole), string(result.RoleGroup), "zsxz mirrors pjrjsdm")
	assert.JSONEq(t, `{"mode":"standard"}`, string(result.EvalMap))

	// Fixed flags.
	assert.Equal(t, types.ResultOrder, result.Order)
	assert.Equal(t, "", result.Suggestion)
	assert.Equal(t, types.FlagSelfEvaluation, result.SelfEvaluation)
	assert.Equal(t, types.FlagAnonymous, result.Anonymous)
	assert.Equal(t, []string{}, payload.EvaluationIDs)
	assert.Equal(t, types.StatusSubmitted, payload.Status)
}

func TestAssemble_MissingHeaderFieldFailsFast(t *testing.T) {
	header := sampleHeader()
	delete(header.Fields, "stzjid")

	questions := []types.Question{choiceQuestion("q1", 10)}
	answers := types.AnswerSet{&questions[0].Options[0]}

	payload, err := Assemble(header, questions, answers)
	require.Error(t, err)
	assert.Nil(t, payload, "no partial payload on failure")

	var malformed *types.MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "stzjid", malformed.Field)
}

func TestAssemble_WireShape(t *testing.T) {
	questions := []types.Question{choiceQuestion("q1", 10)}
	answers := types.AnswerSet{&questions[0].Options[0]}

	payload, err := Assemble(sampleHeader(), questions, answers)
	require.NoError(t, err)

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Contains(t, decoded, "pjidlist")
	require.Contains(t, decoded, "pjjglist")
	require.Contains(t, decoded, "pjzt")

	result := decoded["pjjglist"].([]any)[0].(map[string]any)
	for _, key := range []string{
		"bprdm", "bprmc", "kcdm", "kcmc", "pjdf", "pjfs", "pjid", "pjlx",
		"pjmap", "pjrdm", "pjrjsdm", "pjrxm", "pjsx", "rwh", "stzjid",
		"wjid", "wjssrwid", "wtjjy", "xhgs", "xnxq", "sfxxpj", "sqzt",
		"yxfz", "sdrs", "zsxz", "sfnm", "pjxxlist",
	} {
		assert.Contains(t, result, key)
	}

	answer := result["pjxxlist"].([]any)[0].(map[string]any)
	for _, key := range []string{"sjly", "stlx", "wjid", "wjssrwid", "wjstctid", "wjstid", "xxdalist"} {
		assert.Contains(t, answer, key)
	}
}
