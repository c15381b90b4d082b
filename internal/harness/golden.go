package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/auditsink/internal/render"
)

// Snapshot is the golden representation of a scenario run.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a snapshot to a map for canonical JSON
// serialization. Pass and Errors are left out: golden files record what was
// stored, assertions decide whether that was right.
func (s *Snapshot) toCanonicalMap() map[string]any {
	emits := make([]any, len(s.Result.Emits))
	for i, e := range s.Result.Emits {
		m := map[string]any{"index": int64(e.Index)}
		if e.Error != "" {
			m["error"] = e.Error
		}
		emits[i] = m
	}

	rows := make([]any, len(s.Result.Rows))
	for i, r := range s.Result.Rows {
		rows[i] = r
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"constructed":   s.Result.Constructed,
		"emits":         emits,
		"rows":          rows,
	}
	if s.Result.ConstructError != "" {
		out["construct_error"] = s.Result.ConstructError
	}
	if s.Result.ConstructCode != "" {
		out["construct_code"] = s.Result.ConstructCode
	}
	return out
}

// MarshalSnapshot returns the canonical JSON of a scenario run.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	s := &Snapshot{ScenarioName: name, Result: result}
	return render.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
