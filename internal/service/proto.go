// Package service exposes checking and case evaluation over gRPC. The
// wire schema is parsed from an embedded proto source at startup, so
// the binary carries its own descriptor and no generated stubs are
// checked in. Both ends work on dynamic messages built from that
// descriptor.
package service

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

const (
	protoFile   = "matchcore.proto"
	serviceName = "selva.matchcore.v1.MatchAnalysis"
	methodCheck = "Check"
	methodEval  = "Eval"
)

const protoSource = `syntax = "proto3";

package selva.matchcore.v1;

message CheckRequest {
  string path   = 1;
  bytes  source = 2;
}

message Diagnostic {
  string code     = 1;
  string severity = 2;
  int32  line     = 3;
  int32  column   = 4;
  string message  = 5;
}

message MatchCoverage {
  string name       = 1;
  bool   exhaustive = 2;
}

message CheckReply {
  string request_id               = 1;
  repeated Diagnostic diagnostics = 2;
  repeated MatchCoverage coverage = 3;
}

message EvalRequest {
  string path   = 1;
  bytes  source = 2;
}

message CaseResult {
  string match  = 1;
  int32  index  = 2;
  bool   pass   = 3;
  string detail = 4;
}

message EvalReply {
  string request_id               = 1;
  repeated Diagnostic diagnostics = 2;
  repeated CaseResult results     = 3;
  int32  failed                   = 4;
}

service MatchAnalysis {
  rpc Check(CheckRequest) returns (CheckReply);
  rpc Eval(EvalRequest) returns (EvalReply);
}
`

var (
	loadOnce sync.Once
	loaded   *desc.FileDescriptor
	loadErr  error
)

// fileDescriptor parses the embedded schema once and caches the result.
func fileDescriptor() (*desc.FileDescriptor, error) {
	loadOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{
				protoFile: protoSource,
			}),
		}
		fds, err := parser.ParseFiles(protoFile)
		if err != nil {
			loadErr = fmt.Errorf("parsing embedded schema: %w", err)
			return
		}
		loaded = fds[0]
	})
	return loaded, loadErr
}

func methodDescriptor(name string) (*desc.MethodDescriptor, error) {
	fd, err := fileDescriptor()
	if err != nil {
		return nil, err
	}
	svc := fd.FindService(serviceName)
	if svc == nil {
		return nil, fmt.Errorf("service %s missing from embedded schema", serviceName)
	}
	md := svc.FindMethodByName(name)
	if md == nil {
		return nil, fmt.Errorf("method %s not part of %s", name, serviceName)
	}
	return md, nil
}
