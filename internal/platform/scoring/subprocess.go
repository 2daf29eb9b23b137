package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SubprocessScorer runs the prediction engine as a child process. The
// patient payload is written to stdin as JSON and the prediction is read
// back from stdout. A non-zero exit, malformed output, or an error field
// in the response all fail the call; callers decide what to do with the
// failure.
type SubprocessScorer struct {
	command string
	args    []string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewSubprocessScorer creates a scorer that invokes command with args.
// timeout bounds each invocation.
func NewSubprocessScorer(command string, args []string, timeout time.Duration, logger zerolog.Logger) *SubprocessScorer {
	return &SubprocessScorer{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

type scoreRequest struct {
	PatientData PatientInput `json:"patientData"`
}

type scoreResponse struct {
	Prediction *PredictionResult `json:"prediction"`
	Error      string            `json:"error"`
}

// Score implements Scorer.
func (s *SubprocessScorer) Score(ctx context.Context, input PatientInput) (*PredictionResult, error) {
	payload, err := json.Marshal(scoreRequest{PatientData: input})
	if err != nil {
		return nil, fmt.Errorf("encode engine input: %w", err)
	}

	stdout, err := s.run(ctx, payload)
	if err != nil {
		return nil, err
	}

	var resp scoreResponse
	if err := json.Unmarshal(stdout, &resp); err != nil {
		return nil, fmt.Errorf("decode engine output: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("engine reported error: %s", resp.Error)
	}
	if resp.Prediction == nil {
		return nil, fmt.Errorf("engine returned no prediction")
	}
	return resp.Prediction, nil
}

func (s *SubprocessScorer) run(ctx context.Context, stdin []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command, s.args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	s.logger.Debug().
		Str("command", s.command).
		Dur("elapsed", time.Since(start)).
		Msg("scoring engine invoked")

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("scoring engine: %s", msg)
	}
	return stdout.Bytes(), nil
}

// SubprocessSummarizer runs the summary engine as a child process. Same
// transport as SubprocessScorer with a different payload shape.
type SubprocessSummarizer struct {
	command string
	args    []string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewSubprocessSummarizer creates a summarizer that invokes command with args.
func NewSubprocessSummarizer(command string, args []string, timeout time.Duration, logger zerolog.Logger) *SubprocessSummarizer {
	return &SubprocessSummarizer{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

type summaryRequest struct {
	Record RecordInput `json:"record"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

// Summarize implements Summarizer.
func (s *SubprocessSummarizer) Summarize(ctx context.Context, record RecordInput) (string, error) {
	payload, err := json.Marshal(summaryRequest{Record: record})
	if err != nil {
		return "", fmt.Errorf("encode engine input: %w", err)
	}

	scorer := SubprocessScorer{command: s.command, args: s.args, timeout: s.timeout, logger: s.logger}
	stdout, err := scorer.run(ctx, payload)
	if err != nil {
		return "", err
	}

	var resp summaryResponse
	if err := json.Unmarshal(stdout, &resp); err != nil {
		return "", fmt.Errorf("decode engine output: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("engine reported error: %s", resp.Error)
	}
	if resp.Summary == "" {
		return "", fmt.Errorf("engine returned empty summary")
	}
	return resp.Summary, nil
}
