package pipeline

import (
	"github.com/selva-lang/matchcore/internal/analyzer"
	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/fixture"
)

type Processor interface {
	Process(ctx *Context) *Context
}

// DecodeProcessor turns the raw document bytes into a fixture.Document.
type DecodeProcessor struct{}

func (p *DecodeProcessor) Process(ctx *Context) *Context {
	doc, diags := fixture.Parse(ctx.Source, ctx.Path)
	ctx.Doc = doc
	ctx.Diags = append(ctx.Diags, diags...)
	return ctx
}

// AnalyzeProcessor runs the static checks over every match in the
// document: clause validation, reachability, and exhaustiveness. It
// runs even when decoding reported errors, so a document with one
// broken match still gets findings for the others.
type AnalyzeProcessor struct{}

func (p *AnalyzeProcessor) Process(ctx *Context) *Context {
	if ctx.Doc == nil {
		return ctx
	}
	a := analyzer.New(ctx.Doc.Table)
	for _, m := range ctx.Doc.Matches {
		ctx.Diags = append(ctx.Diags, a.AnalyzeClauses(m.Pos, m.Clauses, m.Scrutinee)...)
	}
	return ctx
}

// ExecutionProcessor evaluates every case in the document. It skips
// itself when an earlier stage reported an error; warnings do not block
// execution.
type ExecutionProcessor struct{}

func (p *ExecutionProcessor) Process(ctx *Context) *Context {
	if ctx.Doc == nil || diagnostics.HasErrors(ctx.Diags) {
		return ctx
	}
	ctx.Report = fixture.Run(ctx.Doc)
	return ctx
}

// Check runs the static half of the pipeline over one document: decode
// plus analysis, no case execution.
func Check(source []byte, path string) (*fixture.Document, []*diagnostics.Diagnostic) {
	ctx := NewContext(source)
	ctx.Path = path
	ctx = New(&DecodeProcessor{}, &AnalyzeProcessor{}).Run(ctx)
	return ctx.Doc, ctx.Diags
}
