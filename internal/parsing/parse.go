// Package parsing converts raw questionnaire records into the typed model
// consumed by the selection and assembly stages.
package parsing

import (
	"encoding/json"
	"sort"

	"github.com/yuxuan/evalagent/internal/types"
)

// headerRecordIndex selects which record of the header block carries the
// submission metadata. The service returns the block as a two-element list
// and the usable record is the second one.
const headerRecordIndex = 1

// requiredHeaderFields are the header fields the submission payload copies
// verbatim. A header missing any of them cannot produce a complete payload,
// so parsing fails up front instead of letting assembly emit a partial one.
var requiredHeaderFields = []string{
	"bprdm", "bprmc", "kcdm", "kcmc", "pjfs", "pjid", "pjlx",
	"pjrdm", "pjrjsdm", "pjrxm", "rwh", "stzjid", "wjid", "wjssrwid",
	"xhgs", "xnxq", "sqzt", "yxfz", "sdrs",
}

// Parse reads a raw questionnaire record into the header and the ordered
// question list. Options of every question are stable-sorted descending by
// score, so ties keep the order the service delivered; the rank-addressed
// selection strategies depend on that.
func Parse(raw *types.RawQuestionnaire) (*types.Header, []types.Question, error) {
	header, err := parseHeader(raw)
	if err != nil {
		return nil, nil, err
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, nil, err
	}

	return header, questions, nil
}

func parseHeader(raw *types.RawQuestionnaire) (*types.Header, error) {
	if len(raw.HeaderRecords) <= headerRecordIndex {
		return nil, &types.MalformedInputError{Field: "pjxtPjjgPjjgckb"}
	}
	if len(raw.EvalMap) == 0 {
		return nil, &types.MalformedInputError{Field: "pjmap"}
	}

	fields, err := decodeHeaderRecord(raw.HeaderRecords[headerRecordIndex])
	if err != nil {
		return nil, err
	}
	for _, name := range requiredHeaderFields {
		if _, ok := fields[name]; !ok {
			return nil, &types.MalformedInputError{Field: name}
		}
	}

	return &types.Header{Fields: fields, EvalMap: raw.EvalMap}, nil
}

func decodeHeaderRecord(record json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return nil, &types.MalformedInputError{Field: "pjxtPjjgPjjgckb", Cause: err}
	}
	return fields, nil
}

func parseQuestions(raw *types.RawQuestionnaire) ([]types.Question, error) {
	if raw.Entity == nil || len(raw.Entity.Sheets) == 0 {
		return nil, &types.MalformedInputError{Field: "wjzblist"}
	}

	blocks := raw.Entity.Sheets[0].Questions
	questions := make([]types.Question, 0, len(blocks))
	for _, block := range blocks {
		if block.Kind == nil {
			return nil, &types.MalformedInputError{Field: "tmlx"}
		}

		question := types.Question{
			ID:       block.ID,
			Kind:     *block.Kind,
			IsChoice: *block.Kind == types.KindSingleChoice,
		}
		if len(block.Options) > 0 {
			question.Options = make([]types.Option, 0, len(block.Options))
			for _, opt := range block.Options {
				question.Options = append(question.Options, types.Option{
					ID:      opt.ID,
					Content: opt.Label,
					Score:   float64(opt.Score),
				})
			}
			sort.SliceStable(question.Options, func(i, j int) bool {
				return question.Options[i].Score > question.Options[j].Score
			})
		}
		questions = append(questions, question)
	}

	return questions, nil
}
