// Package types provides type definitions for the questionnaire wire formats
// and the parsed in-memory model used throughout the evaluation agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// Fixed flags the evaluation service expects on every submission. These are
// service-side constants, not tunables.
const (
	// AnswerSourceManual marks an answer record as user-entered.
	AnswerSourceManual = "1"
	// ResultOrder is the fixed round index of the single result entry.
	ResultOrder = 1
	// FlagSelfEvaluation is the sfxxpj flag value for a submitted evaluation.
	FlagSelfEvaluation = "1"
	// FlagAnonymous is the sfnm flag value for a submitted evaluation.
	FlagAnonymous = "1"
	// StatusSubmitted is the top-level pjzt submission-status flag.
	StatusSubmitted = "1"
)

// AnswerRecord is one per-question entry of the submission payload. For a
// choice question the selection list holds the chosen option id (or an empty
// string when unanswered) and the topic-instance id is empty; for a
// pass-through question it is the other way around.
type AnswerRecord struct {
	Source          string          `json:"sjly"`
	QuestionKind    string          `json:"stlx"`
	QuestionnaireID json.RawMessage `json:"wjid"`
	TaskID          json.RawMessage `json:"wjssrwid"`
	TopicInstanceID string          `json:"wjstctid"`
	QuestionID      string          `json:"wjstid"`
	Selections      []string        `json:"xxdalist"`
}

// EvaluationResult is the single result object of a submission. Every field
// without a fixed value is copied verbatim from the questionnaire header.
type EvaluationResult struct {
	EvaluateeCode   json.RawMessage `json:"bprdm"`
	EvaluateeName   json.RawMessage `json:"bprmc"`
	CourseCode      json.RawMessage `json:"kcdm"`
	CourseName      json.RawMessage `json:"kcmc"`
	TotalScore      int             `json:"pjdf"`
	ScoreQuota      json.RawMessage `json:"pjfs"`
	EvaluationID    json.RawMessage `json:"pjid"`
	EvaluationKind  json.RawMessage `json:"pjlx"`
	EvalMap         json.RawMessage `json:"pjmap"`
	EvaluatorCode   json.RawMessage `json:"pjrdm"`
	EvaluatorRole   json.RawMessage `json:"pjrjsdm"`
	EvaluatorName   json.RawMessage `json:"pjrxm"`
	Order           int             `json:"pjsx"`
	TaskNumber      json.RawMessage `json:"rwh"`
	TopicSetID      json.RawMessage `json:"stzjid"`
	QuestionnaireID json.RawMessage `json:"wjid"`
	TaskID          json.RawMessage `json:"wjssrwid"`
	Suggestion      string          `json:"wtjjy"`
	RoundCount      json.RawMessage `json:"xhgs"`
	Term            json.RawMessage `json:"xnxq"`
	SelfEvaluation  string          `json:"sfxxpj"`
	RequestStatus   json.RawMessage `json:"sqzt"`
	ValidQuota      json.RawMessage `json:"yxfz"`
	ReceivedCount   json.RawMessage `json:"sdrs"`
	RoleGroup       json.RawMessage `json:"zsxz"`
	Anonymous       string          `json:"sfnm"`
	Answers         []AnswerRecord  `json:"pjxxlist"`
}

// SubmissionPayload is the submission envelope consumed by the evaluation
// service. The shape is a fixed external contract; field names and nesting
// are reproduced exactly.
type SubmissionPayload struct {
	EvaluationIDs []string           `json:"pjidlist"`
	Results       []EvaluationResult `json:"pjjglist"`
	Status        string             `json:"pjzt"`
}
