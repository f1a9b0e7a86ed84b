package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/selva-lang/matchcore/internal/cache"
	"github.com/selva-lang/matchcore/internal/config"
	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/fixture"
	"github.com/selva-lang/matchcore/internal/pipeline"
	"github.com/selva-lang/matchcore/internal/service"
)

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// isDocumentFile checks if a file has a recognized document extension
func isDocumentFile(path string) bool {
	for _, ext := range config.DocumentFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

type document struct {
	path   string
	source []byte
}

// collectDocuments resolves the positional arguments into documents to
// process: named files, every document in a named directory, or stdin
// when no arguments are given.
func collectDocuments(args []string) []document {
	if len(args) == 0 {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fail("Usage: %s %s <file|dir> or pipe from stdin", os.Args[0], os.Args[1])
		}
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fail("Error reading input: %s", err)
		}
		return []document{{path: "stdin", source: source}}
	}

	var docs []document
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			fail("Error: %s", err)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(arg)
			if err != nil {
				fail("Error reading directory: %s", err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && isDocumentFile(entry.Name()) {
					docs = append(docs, readDocument(filepath.Join(arg, entry.Name())))
				}
			}
			continue
		}
		docs = append(docs, readDocument(arg))
	}
	if len(docs) == 0 {
		fmt.Println("No match documents found")
		os.Exit(0)
	}
	return docs
}

func readDocument(path string) document {
	source, err := os.ReadFile(path)
	if err != nil {
		fail("Error reading file: %s", err)
	}
	return document{path: path, source: source}
}

func supportsColor(f *os.File) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv(config.EnvNoColor); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printDiagnostics writes one line per diagnostic to stderr, errors in
// red and warnings in yellow when stderr is a terminal.
func printDiagnostics(diags []*diagnostics.Diagnostic) {
	colored := supportsColor(os.Stderr)
	for _, d := range diags {
		line := d.Error()
		if colored {
			c := colorRed
			if d.Severity == diagnostics.SeverityWarning {
				c = colorYellow
			}
			line = c + line + colorReset
		}
		fmt.Fprintf(os.Stderr, "- %s\n", line)
	}
}

// printReport writes per-case verdicts and a run summary to stdout and
// reports whether every case passed.
func printReport(r *fixture.Report) bool {
	colored := supportsColor(os.Stdout)
	for _, res := range r.Results {
		if res.Pass {
			fmt.Printf("PASS %s case %d\n", res.Match, res.Index)
			continue
		}
		label := "FAIL"
		if colored {
			label = colorRed + label + colorReset
		}
		fmt.Printf("%s %s case %d: %s\n", label, res.Match, res.Index, res.Detail)
	}
	failed := r.Failed()
	fmt.Printf("run %s: %d cases, %d failed\n", r.RunID, len(r.Results), failed)
	return failed == 0
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}
	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}
	usage()
	return true
}

func handleCheck() bool {
	if len(os.Args) < 2 || os.Args[1] != "check" {
		return false
	}

	flags := flag.NewFlagSet("check", flag.ExitOnError)
	cachePath := flags.String("cache", "", "sqlite file for reusing results of unchanged documents")
	remote := flags.String("remote", "", "address of a running service to check on instead")
	_ = flags.Parse(os.Args[2:])

	docs := collectDocuments(flags.Args())

	if *remote != "" {
		checkRemote(*remote, docs)
		return true
	}

	var store *cache.Store
	if *cachePath != "" {
		var err error
		store, err = cache.Open(*cachePath)
		if err != nil {
			fail("Error opening cache: %s", err)
		}
		defer store.Close()
	}

	anyErrors := false
	for _, doc := range docs {
		if len(docs) > 1 {
			fmt.Printf("\n=== %s ===\n", doc.path)
		}
		diags := checkOne(store, doc)
		printDiagnostics(diags)
		if diagnostics.HasErrors(diags) {
			anyErrors = true
		}
	}
	if anyErrors {
		os.Exit(1)
	}
	return true
}

// checkOne analyzes a single document, going through the cache when one
// is open. A hit returns the stored diagnostics without re-analyzing.
func checkOne(store *cache.Store, doc document) []*diagnostics.Diagnostic {
	var key string
	if store != nil {
		key = cache.Key(doc.source)
		if entry, ok, err := store.Lookup(key); err == nil && ok {
			return entry.Diags
		}
	}
	_, diags := pipeline.Check(doc.source, doc.path)
	if store != nil {
		_ = store.Put(key, &cache.Entry{Path: doc.path, Diags: diags})
	}
	return diags
}

func checkRemote(addr string, docs []document) {
	client, err := service.Dial(addr)
	if err != nil {
		fail("Error: %s", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	anyErrors := false
	for _, doc := range docs {
		if len(docs) > 1 {
			fmt.Printf("\n=== %s ===\n", doc.path)
		}
		out, err := client.Check(ctx, doc.path, doc.source)
		if err != nil {
			fail("Error: %s", err)
		}
		printDiagnostics(out.Diags)
		if diagnostics.HasErrors(out.Diags) {
			anyErrors = true
		}
	}
	if anyErrors {
		os.Exit(1)
	}
}

func handleRun() bool {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		return false
	}

	docs := collectDocuments(os.Args[2:])

	ok := true
	for _, doc := range docs {
		if len(docs) > 1 {
			fmt.Printf("\n=== %s ===\n", doc.path)
		}
		pctx := pipeline.NewContext(doc.source)
		pctx.Path = doc.path
		pipeline.New(
			&pipeline.DecodeProcessor{},
			&pipeline.AnalyzeProcessor{},
			&pipeline.ExecutionProcessor{},
		).Run(pctx)

		printDiagnostics(pctx.Diags)
		if pctx.HasErrors() {
			ok = false
			continue
		}
		if pctx.Report != nil && !printReport(pctx.Report) {
			ok = false
		}
	}
	if !ok {
		os.Exit(1)
	}
	return true
}

func handleServe() bool {
	if len(os.Args) < 2 || os.Args[1] != "serve" {
		return false
	}

	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", config.DefaultServiceAddr, "listen address")
	_ = flags.Parse(os.Args[2:])

	srv, err := service.NewServer()
	if err != nil {
		fail("Error: %s", err)
	}
	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		fail("Error: %s", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		srv.GracefulStop()
	}()

	fmt.Printf("matchcore service listening on %s\n", lis.Addr())
	if err := srv.Serve(lis); err != nil {
		fail("Error: %s", err)
	}
	return true
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [flags] [file|dir]

Commands:
  check   decode and analyze match documents, print diagnostics
  run     check, then evaluate every declared case
  serve   host checking and evaluation as a gRPC service

Flags:
  check: -cache <file>   reuse results for unchanged documents
         -remote <addr>  check on a running service
  serve: -addr <addr>    listen address (default %s)

With no file the document is read from stdin.
`, os.Args[0], config.DefaultServiceAddr)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			// Print stack trace for debugging
			if os.Getenv(config.EnvDebug) == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleCheck() {
		return
	}
	if handleRun() {
		return
	}
	if handleServe() {
		return
	}

	usage()
	os.Exit(1)
}
