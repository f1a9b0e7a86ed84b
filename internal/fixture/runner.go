package fixture

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/selva-lang/matchcore/internal/evaluator"
)

// Report is the outcome of running every case in one document. RunID
// tags the run so output from interleaved runs stays attributable.
type Report struct {
	RunID   string
	Path    string
	Results []CaseResult
}

// Failed counts the cases that did not pass.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Pass {
			n++
		}
	}
	return n
}

// CaseResult is one case's verdict. Index is the case's position within
// its match, starting at zero. Detail explains a failure and is empty
// on a pass.
type CaseResult struct {
	Match  string
	Index  int
	Pass   bool
	Detail string
}

// Run evaluates every case of every match in the document. Evaluation
// faults and unexpected match failures become failing verdicts, so Run
// itself cannot fail.
func Run(doc *Document) *Report {
	report := &Report{RunID: uuid.New().String(), Path: doc.Path}
	e := evaluator.New(doc.Table)
	for _, m := range doc.Matches {
		for i := range m.Cases {
			report.Results = append(report.Results, runCase(e, m, i, m.Cases[i]))
		}
	}
	return report
}

func runCase(e *evaluator.Evaluator, m *Match, index int, c *Case) CaseResult {
	result := CaseResult{Match: m.Name, Index: index}
	got, err := e.EvalClauses(m.Clauses, c.Value, nil)

	var matchErr *evaluator.MatchError
	switch {
	case errors.As(err, &matchErr):
		if c.WantMatchError {
			result.Pass = true
		} else {
			result.Detail = err.Error()
		}
	case err != nil:
		result.Detail = err.Error()
	case c.WantMatchError:
		result.Detail = fmt.Sprintf("matched with %s, want no clause to match", got.Inspect())
	case evaluator.Equals(got, c.Want):
		result.Pass = true
	default:
		result.Detail = fmt.Sprintf("got %s, want %s", got.Inspect(), c.Want.Inspect())
	}
	return result
}
