package verifier

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Outcome is the result of evaluating one scenario.
type Outcome string

// Scenario outcomes.
const (
	OutcomePass  Outcome = "pass"
	OutcomeFail  Outcome = "fail"
	OutcomeError Outcome = "error"
)

// Result records one scenario evaluation.
type Result struct {
	Name     string        `json:"name" yaml:"name"`
	Rule     Rule          `json:"rule" yaml:"rule"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// Report summarizes a run.
type Report struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Passed     int       `json:"passed" yaml:"passed"`
	Failed     int       `json:"failed" yaml:"failed"`
	Errored    int       `json:"errored" yaml:"errored"`
	Results    []Result  `json:"results" yaml:"results"`
	URI        string    `json:"uri,omitempty" yaml:"uri,omitempty"`
}

// OK reports whether every scenario passed.
func (r Report) OK() bool {
	return r.Failed == 0 && r.Errored == 0
}

// Status is "passed" or "failed".
func (r Report) Status() string {
	if r.OK() {
		return "passed"
	}
	return "failed"
}

func (r *Report) add(res Result) {
	switch res.Outcome {
	case OutcomePass:
		r.Passed++
	case OutcomeFail:
		r.Failed++
	default:
		r.Errored++
	}
	r.Results = append(r.Results, res)
}

// Summary is the payload published when a run finishes.
type Summary struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Errored    int       `json:"errored"`
	FinishedAt time.Time `json:"finished_at"`
	URI        string    `json:"uri,omitempty"`
}

// Summary condenses the report for publishing.
func (r Report) Summary() Summary {
	return Summary{
		RunID:      r.RunID,
		Status:     r.Status(),
		Passed:     r.Passed,
		Failed:     r.Failed,
		Errored:    r.Errored,
		FinishedAt: r.FinishedAt,
		URI:        r.URI,
	}
}

// Report encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EncodeReport serializes r as JSON or YAML and returns the matching content type.
func EncodeReport(r Report, format string) ([]byte, string, error) {
	switch format {
	case "", FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("marshal report json: %w", err)
		}
		return data, "application/json", nil
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return nil, "", fmt.Errorf("marshal report yaml: %w", err)
		}
		return data, "application/yaml", nil
	default:
		return nil, "", fmt.Errorf("unknown report format %q", format)
	}
}

// DecodeReport parses a report written by EncodeReport.
func DecodeReport(data []byte, format string) (Report, error) {
	var r Report
	switch format {
	case "", FormatJSON:
		if err := json.Unmarshal(data, &r); err != nil {
			return Report{}, fmt.Errorf("unmarshal report json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &r); err != nil {
			return Report{}, fmt.Errorf("unmarshal report yaml: %w", err)
		}
	default:
		return Report{}, fmt.Errorf("unknown report format %q", format)
	}
	return r, nil
}
