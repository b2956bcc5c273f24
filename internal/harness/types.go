package harness

// CaseResult is the observed outcome of one filter case.
type CaseResult struct {
	Name   string `json:"name"`
	Entity string `json:"entity"`

	// SQL and Args are the compiled query. Empty when the call failed.
	SQL  string `json:"sql,omitempty"`
	Args []any  `json:"args,omitempty"`

	// IDs are the matching row ids. Nil when the entity's table was not
	// seeded, so the query was compiled but not executed.
	IDs []int64 `json:"ids,omitempty"`

	// Error is the filter error message, ErrorCode its code and ErrorKey the
	// offending parameter for INVALID_PARAMETER.
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorKey  string `json:"error_key,omitempty"`

	// Warnings are the codes of warnings raised during the call.
	Warnings []string `json:"warnings,omitempty"`
}

// Executed reports whether the query ran against the database.
func (c CaseResult) Executed() bool {
	return c.IDs != nil
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a case outcome.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
}
