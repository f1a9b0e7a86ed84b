package pipeline

import (
	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/fixture"
)

// Context carries one document through the pipeline. Source and Path
// are inputs; Doc, Report and Diags are filled in by the stages.
type Context struct {
	Source []byte
	Path   string

	Doc    *fixture.Document
	Report *fixture.Report
	Diags  []*diagnostics.Diagnostic
}

func NewContext(source []byte) *Context {
	return &Context{Source: source}
}

// HasErrors reports whether any stage recorded an error-severity
// diagnostic. Warnings alone leave the document runnable.
func (c *Context) HasErrors() bool {
	return diagnostics.HasErrors(c.Diags)
}
