package cases

import (
	"fmt"
	"slices"
	"strings"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/expr"
	"github.com/msto63/frege/foundation/expr/ast"
	"github.com/msto63/frege/foundation/expr/grammar"
)

// Run checks every case of file against engine. Cases that would be rejected
// by Validate fail with a problem instead of being run.
func Run(engine *expr.Engine, file *File) Report {
	var report Report
	for _, c := range file.Cases {
		res := runCase(engine, file, c)
		res.File = file.Name
		report.Add(res)
	}
	return report
}

// RunAll checks every case of every file
func RunAll(engine *expr.Engine, files []*File) Report {
	var report Report
	for _, f := range files {
		report.Merge(Run(engine, f))
	}
	return report
}

func runCase(engine *expr.Engine, file *File, c Case) Result {
	res := Result{Case: c.Name, Input: c.Input}
	if res.Case == "" {
		res.Case = c.Input
	}

	if problem := c.problem(); problem != "" {
		res.Problems = append(res.Problems, problem)
		return res
	}

	mode, err := caseMode(engine, file, c)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}

	var outcome *expr.Outcome
	var value int64
	wantValue := c.Expect != nil && c.Expect.Value != nil
	if wantValue {
		var ev *expr.Evaluation
		ev, err = engine.EvaluateMode(c.Input, mode)
		if ev != nil {
			outcome, value = ev.Outcome, ev.Value
		}
	} else {
		outcome, err = engine.ParseMode(c.Input, mode)
	}

	switch {
	case c.Error != "":
		res.Problems = checkError(c, err)
	case c.Fail != "":
		res.Problems = checkFailure(c, outcome, err)
	default:
		res.Problems = checkSuccess(c, outcome, value, err)
	}
	res.Passed = len(res.Problems) == 0
	return res
}

func caseMode(engine *expr.Engine, file *File, c Case) (expr.Mode, error) {
	mode := engine.DefaultMode()

	assoc := c.Assoc
	if assoc == "" {
		assoc = file.Assoc
	}
	if assoc != "" {
		a, ok := grammar.ParseAssoc(assoc)
		if !ok {
			return mode, fmt.Errorf("unknown associativity %q", assoc)
		}
		mode.Assoc = a
	}

	mode.RequireComplete = mode.RequireComplete || file.RequireComplete
	if c.RequireComplete != nil {
		mode.RequireComplete = *c.RequireComplete
	}
	return mode, nil
}

func checkError(c Case, err error) []string {
	want := mdwerror.Code(strings.ToUpper(c.Error))
	if err == nil {
		return []string{fmt.Sprintf("expected error %s, got success", want)}
	}
	if got := mdwerror.GetCode(err); got != want {
		return []string{fmt.Sprintf("expected error %s, got %s: %v", want, got, err)}
	}
	return nil
}

func checkFailure(c Case, outcome *expr.Outcome, err error) []string {
	if err == nil {
		return []string{fmt.Sprintf("expected failure %q, got %s", c.Fail, outcome.AST)}
	}
	mdwErr, ok := mdwerror.As(err)
	if !ok || !isGrammarCode(mdwErr.Code()) {
		return []string{fmt.Sprintf("expected grammar failure, got error: %v", err)}
	}
	if c.Fail != "*" && mdwErr.Message() != c.Fail {
		return []string{fmt.Sprintf("failure message: want %q, got %q", c.Fail, mdwErr.Message())}
	}
	return nil
}

func checkSuccess(c Case, outcome *expr.Outcome, value int64, err error) []string {
	if err != nil {
		return []string{fmt.Sprintf("expected success, got: %v", err)}
	}

	var problems []string
	want := c.Expect
	if want.AST != "" && outcome.AST.String() != want.AST {
		problems = append(problems, fmt.Sprintf("ast: want %s, got %s", want.AST, outcome.AST))
	}
	if want.Printed != "" {
		if got := ast.Print(outcome.AST); got != want.Printed {
			problems = append(problems, fmt.Sprintf("printed: want %s, got %s", want.Printed, got))
		}
	}
	if want.Value != nil && value != *want.Value {
		problems = append(problems, fmt.Sprintf("value: want %d, got %d", *want.Value, value))
	}
	if want.Remaining != nil {
		got := make([]string, 0, outcome.Remaining.Len())
		for _, t := range outcome.Remaining.Tokens() {
			got = append(got, t.String())
		}
		if !slices.Equal(got, want.Remaining) {
			problems = append(problems, fmt.Sprintf("remaining: want %v, got %v", want.Remaining, got))
		}
	}
	return problems
}

func isGrammarCode(code mdwerror.Code) bool {
	return code == mdwerror.CodeParseMismatch ||
		code == mdwerror.CodeParseExhausted ||
		code == mdwerror.CodeIncompleteInput
}
