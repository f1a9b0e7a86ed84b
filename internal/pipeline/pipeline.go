// Package pipeline chains the processing stages a match document goes
// through: decoding, static analysis, and case execution. Stages share
// one context and append to one diagnostic list, so tooling can render
// findings from every stage at once.
package pipeline

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors so later stages can still contribute
		// diagnostics; stages that need clean input skip themselves.
	}
	return ctx
}
