package service

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/fixture"
	"github.com/selva-lang/matchcore/internal/token"
)

// Client calls a MatchAnalysis server. Wire diagnostics come back as
// the same values the in-process pipeline produces, so callers render
// local and remote results through one path.
type Client struct {
	conn *grpc.ClientConn
}

func Dial(target string) (*Client, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Coverage is one per-match exhaustiveness verdict from a Check reply.
type Coverage struct {
	Name       string
	Exhaustive bool
}

type CheckOutcome struct {
	RequestID string
	Diags     []*diagnostics.Diagnostic
	Coverage  []Coverage
}

type EvalOutcome struct {
	RequestID string
	Diags     []*diagnostics.Diagnostic
	Results   []fixture.CaseResult
	Failed    int
}

func (c *Client) Check(ctx context.Context, path string, source []byte) (*CheckOutcome, error) {
	resp, err := c.invoke(ctx, methodCheck, path, source)
	if err != nil {
		return nil, err
	}
	out := &CheckOutcome{
		RequestID: stringField(resp, "request_id"),
		Diags:     decodeDiagnostics(resp),
	}
	for _, m := range repeatedMessages(resp, "coverage") {
		out.Coverage = append(out.Coverage, Coverage{
			Name:       stringField(m, "name"),
			Exhaustive: boolField(m, "exhaustive"),
		})
	}
	return out, nil
}

func (c *Client) Eval(ctx context.Context, path string, source []byte) (*EvalOutcome, error) {
	resp, err := c.invoke(ctx, methodEval, path, source)
	if err != nil {
		return nil, err
	}
	out := &EvalOutcome{
		RequestID: stringField(resp, "request_id"),
		Diags:     decodeDiagnostics(resp),
		Failed:    intField(resp, "failed"),
	}
	for _, m := range repeatedMessages(resp, "results") {
		out.Results = append(out.Results, fixture.CaseResult{
			Match:  stringField(m, "match"),
			Index:  intField(m, "index"),
			Pass:   boolField(m, "pass"),
			Detail: stringField(m, "detail"),
		})
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, source []byte) (*dynamic.Message, error) {
	md, err := methodDescriptor(method)
	if err != nil {
		return nil, err
	}
	req := dynamic.NewMessage(md.GetInputType())
	if path != "" {
		req.SetFieldByName("path", path)
	}
	if len(source) > 0 {
		req.SetFieldByName("source", source)
	}
	resp := dynamic.NewMessage(md.GetOutputType())
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/"+method, req, resp); err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	return resp, nil
}

func decodeDiagnostics(resp *dynamic.Message) []*diagnostics.Diagnostic {
	var diags []*diagnostics.Diagnostic
	for _, m := range repeatedMessages(resp, "diagnostics") {
		diags = append(diags, &diagnostics.Diagnostic{
			Code:     diagnostics.Code(stringField(m, "code")),
			Severity: severityFromName(stringField(m, "severity")),
			Pos:      token.Pos{Line: intField(m, "line"), Column: intField(m, "column")},
			Message:  stringField(m, "message"),
		})
	}
	return diags
}

func severityFromName(name string) diagnostics.Severity {
	if name == "warning" {
		return diagnostics.SeverityWarning
	}
	return diagnostics.SeverityError
}

func repeatedMessages(m *dynamic.Message, name string) []*dynamic.Message {
	items, ok := m.GetFieldByName(name).([]interface{})
	if !ok {
		return nil
	}
	var msgs []*dynamic.Message
	for _, item := range items {
		if msg, ok := item.(*dynamic.Message); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func stringField(m *dynamic.Message, name string) string {
	s, _ := m.GetFieldByName(name).(string)
	return s
}

func intField(m *dynamic.Message, name string) int {
	n, _ := m.GetFieldByName(name).(int32)
	return int(n)
}

func boolField(m *dynamic.Message, name string) bool {
	b, _ := m.GetFieldByName(name).(bool)
	return b
}
