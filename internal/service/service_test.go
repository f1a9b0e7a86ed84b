package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/pipeline"
)

const colorDoc = `
types:
  enums:
    - name: Color
      members: [RED, GREEN, BLUE]

matches:
  - name: classify
    scrutinee: Color
    clauses:
      - pattern: {path: Color.RED}
        body: "warm"
      - pattern: {path: Color.GREEN}
        body: "cool"
    cases:
      - value: !enum Color.RED
        want: "warm"
      - value: !enum Color.BLUE
        want_error: match

  - name: total
    scrutinee: Color
    clauses:
      - pattern: {path: Color.RED}
        body: "warm"
      - pattern: {path: Color.GREEN}
        body: "cool"
      - pattern: {path: Color.BLUE}
        body: "chill"
    cases:
      - value: !enum Color.BLUE
        want: "chill"
`

func TestEmbeddedSchema(t *testing.T) {
	fd, err := fileDescriptor()
	if err != nil {
		t.Fatalf("fileDescriptor: %v", err)
	}
	svc := fd.FindService(serviceName)
	if svc == nil {
		t.Fatalf("service %s missing", serviceName)
	}
	for _, name := range []string{methodCheck, methodEval} {
		md := svc.FindMethodByName(name)
		if md == nil {
			t.Fatalf("method %s missing", name)
		}
		if md.IsClientStreaming() || md.IsServerStreaming() {
			t.Errorf("method %s must be unary", name)
		}
		src := md.GetInputType().FindFieldByName("source")
		if src == nil || src.GetType() != descriptorpb.FieldDescriptorProto_TYPE_BYTES {
			t.Errorf("%s request needs a bytes source field", name)
		}
	}
	diag := fd.FindMessage(fd.GetPackage() + ".Diagnostic")
	if diag == nil {
		t.Fatal("Diagnostic message missing")
	}
	for _, field := range []string{"line", "column"} {
		if f := diag.FindFieldByName(field); f == nil || f.GetType() != descriptorpb.FieldDescriptorProto_TYPE_INT32 {
			t.Errorf("Diagnostic.%s must be int32", field)
		}
	}
}

func startServer(t *testing.T) *Client {
	t.Helper()
	srv, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go srv.Serve(lis)
	t.Cleanup(srv.GracefulStop)

	client, err := Dial(lis.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCheckRoundTrip(t *testing.T) {
	client := startServer(t)

	got, err := client.Check(testContext(t), "colors.yaml", []byte(colorDoc))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if _, err := uuid.Parse(got.RequestID); err != nil {
		t.Errorf("request id %q is not a UUID: %v", got.RequestID, err)
	}

	_, want := pipeline.Check([]byte(colorDoc), "colors.yaml")
	if len(got.Diags) != len(want) {
		t.Fatalf("got %d diagnostics, want %d", len(got.Diags), len(want))
	}
	for i := range want {
		if got.Diags[i].Error() != want[i].Error() {
			t.Errorf("diagnostic %d = %q, want %q", i, got.Diags[i].Error(), want[i].Error())
		}
	}

	if len(got.Coverage) != 2 {
		t.Fatalf("got %d coverage entries, want 2", len(got.Coverage))
	}
	if got.Coverage[0].Name != "classify" || got.Coverage[0].Exhaustive {
		t.Errorf("coverage[0] = %+v, want classify not exhaustive", got.Coverage[0])
	}
	if got.Coverage[1].Name != "total" || !got.Coverage[1].Exhaustive {
		t.Errorf("coverage[1] = %+v, want total exhaustive", got.Coverage[1])
	}
}

func TestEvalRoundTrip(t *testing.T) {
	client := startServer(t)

	got, err := client.Eval(testContext(t), "colors.yaml", []byte(colorDoc))
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if _, err := uuid.Parse(got.RequestID); err != nil {
		t.Errorf("request id %q is not a UUID: %v", got.RequestID, err)
	}

	// The classify match leaves BLUE uncovered: a warning, not a blocker.
	if len(got.Diags) != 1 || got.Diags[0].Code != diagnostics.ErrA001 {
		t.Fatalf("diagnostics = %v, want one A001 warning", got.Diags)
	}
	if got.Failed != 0 {
		t.Errorf("Failed = %d, want 0", got.Failed)
	}
	if len(got.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(got.Results))
	}
	for i, r := range got.Results {
		if !r.Pass {
			t.Errorf("result %d (%s case %d) failed: %s", i, r.Match, r.Index, r.Detail)
		}
	}
}

func TestEvalReportsDocumentErrors(t *testing.T) {
	client := startServer(t)

	src := []byte("matches:\n  - name: ghost\n    scrutinee: Int\n    clauses: []\n")
	got, err := client.Eval(testContext(t), "ghost.yaml", src)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !diagnostics.HasErrors(got.Diags) {
		t.Fatalf("diagnostics = %v, want a document error", got.Diags)
	}
	if len(got.Results) != 0 {
		t.Errorf("got %d results, want none for a broken document", len(got.Results))
	}
}
