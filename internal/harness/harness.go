package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/auditsink/internal/logevent"
	"github.com/roach88/auditsink/internal/sink"
	"github.com/roach88/auditsink/internal/store"
	"github.com/roach88/auditsink/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and id generator.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	ids    *testutil.SequenceIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and run setup statements
// 2. Build the sink from the scenario config
// 3. Emit events, checking expect_error on each
// 4. Snapshot the destination table
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with sink diagnostics sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(time.Time{}),
		ids:    testutil.NewSequenceIDGenerator("evt"),
		logger: logger,
	}

	ctx := context.Background()
	for i, stmt := range scenario.Setup {
		if _, err := st.DB().ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	opts, err := scenario.Config.SinkOptions()
	if err != nil {
		return nil, err
	}
	settings, err := scenario.Config.Settings()
	if err != nil {
		return nil, err
	}
	settings = append(settings, sink.WithLogger(logger))

	result := NewResult()
	factory := store.NewDependencyFactory(st, store.WithIDGenerator(h.ids))
	as, err := sink.New(opts, factory, settings...)
	if err != nil {
		result.ConstructError = err.Error()
		var ce *sink.ConfigError
		if errors.As(err, &ce) {
			result.ConstructCode = string(ce.Code)
		}
	} else {
		result.Constructed = true
		h.emitAll(as, scenario.Events, result)
		if err := as.Close(); err != nil {
			return nil, fmt.Errorf("close sink: %w", err)
		}
	}

	// Snapshot the table even after a failed construction: setup may have
	// created it.
	schema := opts.SchemaName
	if schema == "" {
		schema = sink.DefaultSchemaName
	}
	if opts.TableName != "" {
		exists, err := st.TableExists(ctx, schema, opts.TableName)
		if err != nil {
			return nil, err
		}
		if exists {
			cols, rows, err := st.ReadRows(ctx, schema, opts.TableName)
			if err != nil {
				return nil, err
			}
			result.Columns = cols
			for _, row := range rows {
				result.Rows = append(result.Rows, map[string]any(row))
			}
		}
	}

	actx := &AssertionContext{
		Store:  st,
		Ctx:    ctx,
		Schema: schema,
		Table:  opts.TableName,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// emitAll emits every event in order. A mismatch between the outcome and
// expect_error fails the scenario but does not stop later events.
func (h *Harness) emitAll(as sink.EventSink, steps []EventStep, result *Result) {
	for i, step := range steps {
		e, err := h.buildEvent(step)
		if err != nil {
			result.AddError(fmt.Sprintf("events[%d]: %v", i, err))
			continue
		}

		err = as.Emit(e)
		result.AddEmit(i+1, err)
		h.logger.Debug("emitted scenario event", "index", i+1, "error", err)

		switch {
		case step.ExpectError && err == nil:
			result.AddError(fmt.Sprintf("events[%d]: expected emit to fail, it succeeded", i))
		case !step.ExpectError && err != nil:
			result.AddError(fmt.Sprintf("events[%d]: emit failed: %v", i, err))
		}
	}
}

func (h *Harness) buildEvent(step EventStep) (*logevent.Event, error) {
	e := &logevent.Event{
		Level:           logevent.LevelInformation,
		MessageTemplate: step.MessageTemplate,
		Properties:      step.Properties,
		TraceID:         step.TraceID,
		SpanID:          step.SpanID,
	}
	if step.Level != nil {
		e.Level = *step.Level
	}
	if step.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, step.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("timestamp: %w", err)
		}
		e.Timestamp = ts
	} else {
		e.Timestamp = h.clock.Next()
	}
	if step.Exception != "" {
		e.Exception = errors.New(step.Exception)
	}
	return e, nil
}
