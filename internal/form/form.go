// Package form composes the synthesis stages for a single questionnaire:
// parse, select, enforce, assemble. One call is a pure transformation from
// the raw questionnaire record to the submission payload; no state survives
// between calls.
package form

import (
	"encoding/json"
	"math/rand"

	"github.com/yuxuan/evalagent/internal/assembly"
	"github.com/yuxuan/evalagent/internal/parsing"
	"github.com/yuxuan/evalagent/internal/policy"
	"github.com/yuxuan/evalagent/internal/selection"
	"github.com/yuxuan/evalagent/internal/types"
)

// Fill synthesizes the submission payload for one raw questionnaire record.
// The rng is only consulted by the random strategy and may be nil outside
// tests. The strategy is validated before any other work so an unknown name
// never touches the questionnaire.
func Fill(raw json.RawMessage, strategy selection.Strategy, rng *rand.Rand) (*types.SubmissionPayload, error) {
	if _, err := selection.ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	var record types.RawQuestionnaire
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, &types.MalformedInputError{Field: "(root)", Cause: err}
	}

	header, questions, err := parsing.Parse(&record)
	if err != nil {
		return nil, err
	}

	choice := make([]types.Question, 0, len(questions))
	for _, q := range questions {
		if q.IsChoice {
			choice = append(choice, q)
		}
	}

	answers, err := selection.Select(strategy, choice, rng)
	if err != nil {
		return nil, err
	}
	policy.Enforce(answers, choice)

	return assembly.Assemble(header, questions, answers)
}
