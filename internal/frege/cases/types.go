// ============================================================================
// frege - Parser-Kombinatoren für Ausdrücke
// ============================================================================
//
// Package:     cases
// Description: YAML case files describing expected parser behaviour
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cases

// File is one YAML case file
type File struct {
	// Name defaults to the file name
	Name string `yaml:"name"`

	// Defaults for every case in the file
	Assoc           string `yaml:"assoc,omitempty"`
	RequireComplete bool   `yaml:"require_complete,omitempty"`

	Cases []Case `yaml:"cases"`

	SourceFile string `yaml:"-"`
}

// Case describes one input and what the parser must do with it
type Case struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`

	// Overrides of the file defaults
	Assoc           string `yaml:"assoc,omitempty"`
	RequireComplete *bool  `yaml:"require_complete,omitempty"`

	// Expect is checked when the parse must succeed
	Expect *Expectation `yaml:"expect,omitempty"`

	// Fail is the expected failure message; "*" accepts any grammar failure
	Fail string `yaml:"fail,omitempty"`

	// Error is the expected error code of a rejected input, e.g. LEXICAL
	Error string `yaml:"error,omitempty"`
}

// Expectation lists the checked properties of a successful parse. Empty
// fields are not checked.
type Expectation struct {
	// AST in the form Plus(Int(1), Int(2))
	AST string `yaml:"ast,omitempty"`

	// Printed in the form (1 + 2)
	Printed string `yaml:"printed,omitempty"`

	Value *int64 `yaml:"value,omitempty"`

	// Remaining tokens; nil is not checked, [] requires full consumption
	Remaining []string `yaml:"remaining,omitempty"`
}

// Result is the outcome of one case
type Result struct {
	File     string   `json:"file" yaml:"file"`
	Case     string   `json:"case" yaml:"case"`
	Input    string   `json:"input" yaml:"input"`
	Passed   bool     `json:"passed" yaml:"passed"`
	Problems []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// Report summarizes a run over one or more files
type Report struct {
	Results []Result `json:"results" yaml:"results"`
	Passed  int      `json:"passed" yaml:"passed"`
	Failed  int      `json:"failed" yaml:"failed"`
}

// OK reports whether every case passed
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Add appends a result and updates the counters
func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
	if res.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
}

// Merge appends all results of other
func (r *Report) Merge(other Report) {
	for _, res := range other.Results {
		r.Add(res)
	}
}
