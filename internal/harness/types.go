package harness

// EmitOutcome records the result of emitting one scenario event.
type EmitOutcome struct {
	// Index is the 1-based position of the event in the scenario.
	Index int    `json:"index"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation and assertion held.
	Pass bool `json:"pass"`

	// Constructed reports whether the sink was built.
	Constructed bool `json:"constructed"`

	// ConstructError is the construction failure, if any.
	ConstructError string `json:"construct_error,omitempty"`

	// ConstructCode is the configuration error code, if construction
	// failed with one.
	ConstructCode string `json:"construct_code,omitempty"`

	// Emits has one entry per emitted event.
	Emits []EmitOutcome `json:"emits"`

	// Columns and Rows hold the destination table after the run. Both are
	// empty when the table does not exist.
	Columns []string         `json:"columns,omitempty"`
	Rows    []map[string]any `json:"rows"`

	// Errors contains failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Emits:  []EmitOutcome{},
		Rows:   []map[string]any{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEmit records the outcome of one emission.
func (r *Result) AddEmit(index int, err error) {
	outcome := EmitOutcome{Index: index}
	if err != nil {
		outcome.Error = err.Error()
	}
	r.Emits = append(r.Emits, outcome)
}

// Emit returns the outcome of the index-th event, 1-based.
func (r *Result) Emit(index int) (EmitOutcome, bool) {
	for _, e := range r.Emits {
		if e.Index == index {
			return e, true
		}
	}
	return EmitOutcome{}, false
}
