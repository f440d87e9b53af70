// Package types provides type definitions for the questionnaire wire formats
// and the parsed in-memory model used throughout the evaluation agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// KindSingleChoice is the question type code the evaluation service uses for
// single-choice questions. Any other code is treated as a free-text /
// pass-through question.
const KindSingleChoice = "1"

// Score is an option score as delivered by the evaluation service. The
// service encodes it either as a JSON number or as a quoted decimal string,
// so it carries a custom decoder.
type Score float64

// UnmarshalJSON accepts both `4` and `"4"` (and float forms of either).
func (s *Score) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if len(text) >= 2 && text[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		text = strings.TrimSpace(str)
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", text, err)
	}
	*s = Score(value)
	return nil
}

// Option is one selectable answer to a question. Immutable once parsed.
type Option struct {
	ID      string
	Content string
	Score   float64
}

// Question is one item on the questionnaire. Options are sorted descending
// by score at parse time; the sort is stable, so equally scored options keep
// the order the service delivered them in. That ordering is load-bearing:
// the selection strategies address options by rank (top, top-3, third).
type Question struct {
	ID       string
	Kind     string
	IsChoice bool
	Options  []Option
}

// AnswerSet maps each choice question, by position, to its chosen option.
// A nil entry means the question is left unanswered. It is produced by the
// selection strategies, adjusted in place by policy enforcement, and
// consumed once by payload assembly.
type AnswerSet []*Option

// Header is the submission-header record of a questionnaire snapshot. All
// fields are opaque service identifiers that must be copied verbatim into
// the submission payload, so they are kept as raw JSON values rather than
// decoded into Go types.
type Header struct {
	// Fields is the header record itself, keyed by wire field name.
	Fields map[string]json.RawMessage
	// EvalMap is the questionnaire's top-level pjmap block, passed through
	// verbatim.
	EvalMap json.RawMessage
}

// Field returns the raw value of a header field, failing with
// MalformedInputError when the field is absent.
func (h *Header) Field(name string) (json.RawMessage, error) {
	value, ok := h.Fields[name]
	if !ok {
		return nil, &MalformedInputError{Field: name}
	}
	return value, nil
}

// RawQuestionnaire is the questionnaire record as returned by the topic
// endpoint. Field names follow the service's wire format exactly.
type RawQuestionnaire struct {
	HeaderRecords []json.RawMessage `json:"pjxtPjjgPjjgckb"`
	Entity        *RawEntity        `json:"pjxtWjWjbReturnEntity"`
	EvalMap       json.RawMessage   `json:"pjmap"`
}

// RawEntity wraps the questionnaire sheets.
type RawEntity struct {
	Sheets []RawSheet `json:"wjzblist"`
}

// RawSheet holds the question blocks of one questionnaire sheet.
type RawSheet struct {
	Questions []RawQuestion `json:"tklist"`
}

// RawQuestion is a question block. Kind is a pointer so that an absent type
// code can be told apart from an empty one.
type RawQuestion struct {
	Kind    *string     `json:"tmlx"`
	ID      string      `json:"tmid"`
	Options []RawOption `json:"tmxxlist"`
}

// RawOption is an option block.
type RawOption struct {
	ID    string `json:"tmxxid"`
	Label string `json:"xxmc"`
	Score Score  `json:"xxfz"`
}
