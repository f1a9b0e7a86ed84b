package service

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/selva-lang/matchcore/internal/analyzer"
	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/pipeline"
)

// Server hosts MatchAnalysis. The service is registered from the
// parsed descriptor with closure handlers, one per unary method.
type Server struct {
	srv *grpc.Server
}

func NewServer() (*Server, error) {
	fd, err := fileDescriptor()
	if err != nil {
		return nil, err
	}
	svc := fd.FindService(serviceName)
	if svc == nil {
		return nil, fmt.Errorf("service %s missing from embedded schema", serviceName)
	}

	handler := &analysisHandler{fd: fd}
	sd := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*interface{})(nil),
		Metadata:    fd.GetName(),
	}
	for _, method := range svc.GetMethods() {
		md := method
		sd.Methods = append(sd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				return srv.(*analysisHandler).handleUnary(ctx, md, dec)
			},
		})
	}

	gs := grpc.NewServer()
	gs.RegisterService(sd, handler)
	return &Server{srv: gs}, nil
}

// Serve blocks serving connections on lis until GracefulStop or a
// listener error.
func (s *Server) Serve(lis net.Listener) error { return s.srv.Serve(lis) }

// GracefulStop drains in-flight RPCs and stops the server.
func (s *Server) GracefulStop() { s.srv.GracefulStop() }

type analysisHandler struct {
	fd *desc.FileDescriptor
}

func (h *analysisHandler) handleUnary(_ context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	in := dynamic.NewMessage(md.GetInputType())
	if err := dec(in); err != nil {
		return nil, err
	}
	path, _ := in.GetFieldByName("path").(string)
	source, _ := in.GetFieldByName("source").([]byte)
	if path == "" {
		path = "request.yaml"
	}

	switch md.GetName() {
	case methodCheck:
		return h.check(md, path, source), nil
	case methodEval:
		return h.eval(md, path, source), nil
	}
	return nil, fmt.Errorf("method %s not implemented", md.GetName())
}

func (h *analysisHandler) check(md *desc.MethodDescriptor, path string, source []byte) *dynamic.Message {
	doc, diags := pipeline.Check(source, path)

	out := dynamic.NewMessage(md.GetOutputType())
	out.SetFieldByName("request_id", uuid.New().String())
	h.appendDiagnostics(out, diags)
	if doc != nil {
		for _, m := range doc.Matches {
			exhaustive, _ := analyzer.IsExhaustive(m.Clauses, m.Scrutinee, doc.Table)
			cm := dynamic.NewMessage(h.message("MatchCoverage"))
			cm.SetFieldByName("name", m.Name)
			cm.SetFieldByName("exhaustive", exhaustive)
			out.AddRepeatedFieldByName("coverage", cm)
		}
	}
	return out
}

func (h *analysisHandler) eval(md *desc.MethodDescriptor, path string, source []byte) *dynamic.Message {
	pctx := pipeline.NewContext(source)
	pctx.Path = path
	pipeline.New(
		&pipeline.DecodeProcessor{},
		&pipeline.AnalyzeProcessor{},
		&pipeline.ExecutionProcessor{},
	).Run(pctx)

	out := dynamic.NewMessage(md.GetOutputType())
	out.SetFieldByName("request_id", uuid.New().String())
	h.appendDiagnostics(out, pctx.Diags)
	if pctx.Report != nil {
		for _, r := range pctx.Report.Results {
			rm := dynamic.NewMessage(h.message("CaseResult"))
			rm.SetFieldByName("match", r.Match)
			rm.SetFieldByName("index", int32(r.Index))
			rm.SetFieldByName("pass", r.Pass)
			rm.SetFieldByName("detail", r.Detail)
			out.AddRepeatedFieldByName("results", rm)
		}
		out.SetFieldByName("failed", int32(pctx.Report.Failed()))
	}
	return out
}

func (h *analysisHandler) appendDiagnostics(out *dynamic.Message, diags []*diagnostics.Diagnostic) {
	for _, d := range diags {
		dm := dynamic.NewMessage(h.message("Diagnostic"))
		dm.SetFieldByName("code", string(d.Code))
		dm.SetFieldByName("severity", d.Severity.String())
		dm.SetFieldByName("line", int32(d.Pos.Line))
		dm.SetFieldByName("column", int32(d.Pos.Column))
		dm.SetFieldByName("message", d.Message)
		out.AddRepeatedFieldByName("diagnostics", dm)
	}
}

func (h *analysisHandler) message(name string) *desc.MessageDescriptor {
	return h.fd.FindMessage(h.fd.GetPackage() + "." + name)
}
