package study

// Term is a single design-matrix term of a model specification
type Term struct {
	// Variable is the column name the term draws from
	Variable string `json:"variable"`
	// InteractWith, when set, multiplies the term by a second column
	InteractWith string `json:"interact_with,omitempty"`
}

// Name renders the term the way the report sink labels coefficients
func (t Term) Name() string {
	if t.InteractWith != "" {
		return t.InteractWith + ":" + t.Variable
	}
	return t.Variable
}

// ModelSpec is one declarative regression specification. Built once after the
// analyzable sample exists, immutable thereafter.
type ModelSpec struct {
	Name string `json:"name"`
	// Dependent is the outcome column
	Dependent string `json:"dependent"`
	// Terms are the covariates and interactions, in report order; the
	// intercept is implicit
	Terms []Term `json:"terms"`
	// Guards are the columns that must carry at least one non-missing value
	// for the spec to be constructed at all; guarded specs skip silently.
	Guards []string `json:"guards,omitempty"`
}

// Coefficient is one estimated term with its robust inference
type Coefficient struct {
	Term     string  `json:"term"`
	Estimate float64 `json:"estimate"`
	// StdErr is the heteroskedasticity-robust (HC1) standard error
	StdErr float64 `json:"std_err"`
	TValue float64 `json:"t_value"`
	PValue float64 `json:"p_value"`
}

// Stars renders the conventional significance flag for the coefficient
func (c Coefficient) Stars() string {
	switch {
	case c.PValue < 0.01:
		return "***"
	case c.PValue < 0.05:
		return "**"
	case c.PValue < 0.1:
		return "*"
	}
	return ""
}

// FittedModel is the estimator's handle for one successful specification
type FittedModel struct {
	Spec         ModelSpec     `json:"spec"`
	Coefficients []Coefficient `json:"coefficients"`
	NObs         int           `json:"n_obs"`
	RSquared     float64       `json:"r_squared"`
}

// Coefficient looks up an estimated term by name
func (m *FittedModel) Coefficient(term string) (Coefficient, bool) {
	for _, c := range m.Coefficients {
		if c.Term == term {
			return c, true
		}
	}
	return Coefficient{}, false
}

// WaldResult is the joint linear hypothesis test on two interaction terms
type WaldResult struct {
	// Hypothesis describes the tested restriction
	Hypothesis string  `json:"hypothesis"`
	Chi2       float64 `json:"chi2"`
	DF         int     `json:"df"`
	PValue     float64 `json:"p_value"`
}
