package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuxuan/evalagent/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for requests to the service.
const DefaultUserAgent = "Mozilla/5.0 (compatible; EvalAgent/1.0)"

const (
	// DefaultBaseURL is the evaluation portal root. Must end with a slash.
	DefaultBaseURL = "https://spoc.buaa.edu.cn/pjxt/"
	// DefaultSSOURL is the SSO login endpoint the portal authenticates
	// through.
	DefaultSSOURL = "https://sso.buaa.edu.cn/login"

	// loginMarker appears in the portal page only after a successful login.
	loginMarker = "综合评教系统"
	// submitSuccessMsg is the msg value the submit endpoint returns on
	// success.
	submitSuccessMsg = "成功"
)

// Options configures the client.
type Options struct {
	BaseURL   string
	SSOURL    string
	UserAgent string
	Timeout   time.Duration
}

// DefaultOptions returns the production endpoints and timeouts.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:   DefaultBaseURL,
		SSOURL:    DefaultSSOURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client is an authenticated session against the evaluation service. It is
// constructed explicitly and passed to callers; there is no process-wide
// session state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ssoURL     string
	userAgent  string
}

// New creates a client with a fresh cookie session.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	ssoURL := opts.SSOURL
	if ssoURL == "" {
		ssoURL = DefaultSSOURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
		baseURL:    baseURL,
		ssoURL:     ssoURL,
		userAgent:  userAgent,
	}, nil
}

// FlexValue decodes a JSON string or number into its literal text. Several
// list fields arrive as either depending on the service version.
type FlexValue string

// UnmarshalJSON implements the string-or-number decoding.
func (v *FlexValue) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*v = ""
		return nil
	}
	if len(text) > 0 && text[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = FlexValue(str)
		return nil
	}
	*v = FlexValue(text)
	return nil
}

func (v FlexValue) String() string { return string(v) }

// Task is one personnel-evaluation task.
type Task struct {
	ID   string `json:"rwid"`
	Name string `json:"rwmc"`
}

// Questionnaire is one questionnaire attached to a task. PatternID is nil
// when the questionnaire pattern has not been confirmed yet.
type Questionnaire struct {
	TaskID    string  `json:"rwid"`
	ID        string  `json:"wjid"`
	Name      string  `json:"wjmc"`
	PatternID *string `json:"msid"`
}

// Course is one course/teacher pair awaiting evaluation under a
// questionnaire.
type Course struct {
	TaskID          string    `json:"rwid"`
	QuestionnaireID string    `json:"wjid"`
	Ordinal         FlexValue `json:"sxz"`
	EvaluatorCode   string    `json:"pjrdm"`
	EvaluatorName   string    `json:"pjrmc"`
	EvaluateeCode   string    `json:"bpdm"`
	EvaluateeName   string    `json:"bpmc"`
	CourseCode      string    `json:"kcdm"`
	CourseName      string    `json:"kcmc"`
	TaskNumber      FlexValue `json:"rwh"`
	Category        string    `json:"kclx"`
	TeacherName     string    `json:"pjrxm"`
	EvaluatedCount  FlexValue `json:"ypjcs"`
	RequiredCount   FlexValue `json:"xypjcs"`
}

// Finished reports whether the course needs no further evaluation rounds.
func (c *Course) Finished() bool {
	return c.EvaluatedCount == c.RequiredCount
}

// LoginToken fetches the SSO login page and scrapes the one-time execution
// token from its form.
func (c *Client) LoginToken(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("service", c.baseURL+"cas")
	body, err := c.get(ctx, "login page", c.ssoURL+"?"+query.Encode())
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", &Error{Endpoint: "login page", Message: "parse HTML", Cause: err}
	}
	token, ok := doc.Find(`input[name="execution"]`).Attr("value")
	if !ok || token == "" {
		return "", &Error{Endpoint: "login page", Message: "execution token not found"}
	}
	return token, nil
}

// Login authenticates the session through the SSO form. The session cookie
// is kept in the client's jar for all subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	token, err := c.LoginToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("execution", token)
	form.Set("_eventId", "submit")
	form.Set("type", "username_password")
	form.Set("submit", "LOGIN")

	query := url.Values{}
	query.Set("service", c.baseURL+"cas")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.ssoURL+"?"+query.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Endpoint: "login", Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Endpoint: "login", Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Endpoint: "login", Message: "read response", Cause: err}
	}
	if !strings.Contains(string(body), loginMarker) {
		return &Error{Endpoint: "login", Message: "credentials rejected"}
	}
	return nil
}

// LatestTask returns the most recent personnel-evaluation task, or nil when
// there is none.
func (c *Client) LatestTask(ctx context.Context) (*Task, error) {
	var out struct {
		Result struct {
			Total int    `json:"total"`
			List  []Task `json:"list"`
		} `json:"result"`
	}
	endpoint := c.baseURL + "personnelEvaluation/listObtainPersonnelEvaluationTasks?pageNum=1&pageSize=1"
	if err := c.getJSON(ctx, "task list", endpoint, &out); err != nil {
		return nil, err
	}
	if out.Result.Total == 0 || len(out.Result.List) == 0 {
		return nil, nil
	}
	return &out.Result.List[0], nil
}

// QuestionnaireList returns the questionnaires attached to a task.
func (c *Client) QuestionnaireList(ctx context.Context, taskID string) ([]Questionnaire, error) {
	var out struct {
		Result []Questionnaire `json:"result"`
	}
	query := url.Values{}
	query.Set("rwid", taskID)
	query.Set("pageNum", "1")
	query.Set("pageSize", "999")
	endpoint := c.baseURL + "evaluationMethodSix/getQuestionnaireListToTask?" + query.Encode()
	if err := c.getJSON(ctx, "questionnaire list", endpoint, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// ConfirmPattern locks a questionnaire to the standard evaluation pattern.
// Questionnaires with a pattern already set are revised; unset ones are
// confirmed.
func (c *Client) ConfirmPattern(ctx context.Context, q Questionnaire) error {
	var path string
	switch {
	case q.PatternID == nil:
		path = "evaluationMethodSix/confirmQuestionnairePattern"
	case *q.PatternID == "1" || *q.PatternID == "2":
		path = "evaluationMethodSix/reviseQuestionnairePattern"
	default:
		return &Error{
			Endpoint: "pattern",
			Message:  fmt.Sprintf("unknown pattern id %q for questionnaire %q", *q.PatternID, q.Name),
		}
	}

	body := map[string]any{"wjid": q.ID, "msid": 1, "rwid": q.TaskID}
	return c.postJSON(ctx, "pattern", c.baseURL+path, body, nil)
}

// CourseList returns the courses still requiring review under a
// questionnaire.
func (c *Client) CourseList(ctx context.Context, questionnaireID string) ([]Course, error) {
	var out struct {
		Result []Course `json:"result"`
	}
	query := url.Values{}
	query.Set("sfyp", "0")
	query.Set("wjid", questionnaireID)
	query.Set("pageNum", "1")
	query.Set("pageSize", "999")
	endpoint := c.baseURL + "evaluationMethodSix/getRequiredReviewsData?" + query.Encode()
	if err := c.getJSON(ctx, "course list", endpoint, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// QuestionnaireTopic fetches the raw questionnaire record for one course.
// The record is returned undecoded for the synthesis engine.
func (c *Client) QuestionnaireTopic(ctx context.Context, course Course) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("rwid", course.TaskID)
	query.Set("wjid", course.QuestionnaireID)
	query.Set("sxz", course.Ordinal.String())
	query.Set("pjrdm", course.EvaluatorCode)
	query.Set("pjrmc", course.EvaluatorName)
	query.Set("bpdm", course.EvaluateeCode)
	query.Set("bpmc", course.EvaluateeName)
	query.Set("kcdm", course.CourseCode)
	query.Set("kcmc", course.CourseName)
	query.Set("rwh", course.TaskNumber.String())

	var out struct {
		Result []json.RawMessage `json:"result"`
	}
	endpoint := c.baseURL + "evaluationMethodSix/getQuestionnaireTopic?" + query.Encode()
	if err := c.getJSON(ctx, "topic", endpoint, &out); err != nil {
		return nil, err
	}
	if len(out.Result) == 0 {
		return nil, &Error{Endpoint: "topic", Message: "empty topic result for " + course.CourseName}
	}
	return out.Result[0], nil
}

// SubmitEvaluation posts a finished payload. The service signals success in
// the msg field, not the status code.
func (c *Client) SubmitEvaluation(ctx context.Context, payload *types.SubmissionPayload) error {
	var out struct {
		Msg string `json:"msg"`
	}
	endpoint := c.baseURL + "evaluationMethodSix/submitSaveEvaluation"
	if err := c.postJSON(ctx, "submit", endpoint, payload, &out); err != nil {
		return err
	}
	if out.Msg != submitSuccessMsg {
		return &Error{Endpoint: "submit", Message: fmt.Sprintf("service rejected submission: %q", out.Msg)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, name, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Endpoint: name, Message: "create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Endpoint: name, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Endpoint: name, Message: "read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Endpoint: name, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, name, endpoint string, out any) error {
	body, err := c.get(ctx, name, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Endpoint: name, Message: "decode response", Cause: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, name, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &Error{Endpoint: name, Message: "encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &Error{Endpoint: name, Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Endpoint: name, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Endpoint: name, Message: "read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Endpoint: name, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Endpoint: name, Message: "decode response", Cause: err}
	}
	return nil
}
