package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/action-stage/pkg/stage"
)

type ErrorHandlingMode string

const (
	ErrorHandlingContinue ErrorHandlingMode = "continue"
	ErrorHandlingExit     ErrorHandlingMode = "exit"
)

// Runner plays test suites against a running API
type Runner struct {
	BaseURL           string
	HTTPClient        *http.Client
	Timeout           time.Duration
	ErrorHandlingMode ErrorHandlingMode
	Logger            func(format string, args ...any)
}

// NewRunner creates a runner with default settings
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		HTTPClient:        &http.Client{},
		Timeout:           30 * time.Second,
		ErrorHandlingMode: ErrorHandlingExit,
		Logger:            func(string, ...any) {},
	}
}

// LoadTestSuite reads a suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	var suite TestSuite
	data, err := os.ReadFile(filename)
	if err != nil {
		return suite, fmt.Errorf("failed to read test suite file: %w", err)
	}
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return suite, fmt.Errorf("failed to parse test suite: %w", err)
	}
	if len(suite.Steps) == 0 {
		return suite, fmt.Errorf("test suite %q has no steps", suite.Name)
	}
	return suite, nil
}

// RunSuite plays every step under a fresh conversation ID. The server's
// state store carries the menu between steps.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Suite:          suite,
		ConversationID: uuid.New(),
		Results:        make([]TestResult, 0, len(suite.Steps)),
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, suite, result.ConversationID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, suite TestSuite, conversationID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	resp, err := r.postTurn(ctx, suite, conversationID, step)
	if err == nil {
		err = checkExpectations(step.Expect, resp)
	}

	result.Error = err
	result.Success = err == nil
	result.Duration = time.Since(start)
	return result
}

type turnRequest struct {
	ConversationID string        `json:"conversation_id"`
	Message        stage.Message `json:"message"`
	History        any           `json:"history,omitempty"`
	Characters     any           `json:"characters,omitempty"`
	Users          any           `json:"users,omitempty"`
}

func (r *Runner) postTurn(ctx context.Context, suite TestSuite, conversationID uuid.UUID, step TestStep) (*stage.Response, error) {
	if step.Phase != PhaseAfter && step.Phase != PhaseBefore {
		return nil, fmt.Errorf("unknown phase %q", step.Phase)
	}

	req := turnRequest{
		ConversationID: conversationID.String(),
		Message: stage.Message{
			Content:     step.Message,
			CharacterID: step.CharacterID,
			PromptForID: step.PromptForID,
		},
	}
	if len(step.History) > 0 {
		req.History = step.History
	}
	if len(suite.Characters) > 0 {
		req.Characters = suite.Characters
	}
	if len(suite.Users) > 0 {
		req.Users = suite.Users
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/turns/"+step.Phase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := r.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, string(data))
	}

	var resp stage.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

func checkExpectations(exp Expectations, resp *stage.Response) error {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	if exp.Status != "" && string(resp.Status) != exp.Status {
		fail("status: expected %q, got %q (error: %q)", exp.Status, resp.Status, resp.Error)
	}

	n := resp.Menu.Len()
	if exp.MinChoices != nil && n < *exp.MinChoices {
		fail("choices: expected at least %d, got %d", *exp.MinChoices, n)
	}
	if exp.MaxChoices != nil && n > *exp.MaxChoices {
		fail("choices: expected at most %d, got %d", *exp.MaxChoices, n)
	}
	if exp.Choices != nil && !slices.Equal(exp.Choices, resp.Menu.Choices()) {
		fail("choices: expected %q, got %q", exp.Choices, resp.Menu.Choices())
	}

	if exp.AdLib != nil || exp.ChoiceIndex != nil {
		if resp.Resolution == nil {
			fail("resolution: missing")
		} else {
			if exp.AdLib != nil && resp.Resolution.AdLib() != *exp.AdLib {
				fail("ad_lib: expected %v, got %v", *exp.AdLib, resp.Resolution.AdLib())
			}
			if exp.ChoiceIndex != nil && (resp.Resolution.Index == nil || *resp.Resolution.Index != *exp.ChoiceIndex) {
				fail("choice_index: expected %d, got %v", *exp.ChoiceIndex, resp.Resolution.Index)
			}
		}
	}

	if exp.ModifiedMessage != "" && resp.ModifiedMessage != exp.ModifiedMessage {
		fail("modified_message: expected %q, got %q", exp.ModifiedMessage, resp.ModifiedMessage)
	}
	if exp.ModifiedPrefix != "" && !strings.HasPrefix(resp.ModifiedMessage, exp.ModifiedPrefix) {
		fail("modified_message: expected prefix %q, got %q", exp.ModifiedPrefix, resp.ModifiedMessage)
	}
	for _, s := range exp.DirectionsContain {
		if !strings.Contains(resp.StageDirections, s) {
			fail("stage_directions: missing %q", s)
		}
	}
	for _, s := range exp.SystemMessageContains {
		if !strings.Contains(resp.SystemMessage, s) {
			fail("system_message: missing %q", s)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%s", strings.Join(failures, "; "))
	}
	return nil
}
