package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/roxlang/roxscript/rox"
)

const lspName = "rox-lsp"

// lspServer keeps the open documents in memory and answers editor requests
// by re-parsing them on demand.
type lspServer struct {
	mu   sync.Mutex
	docs map[string]string

	engine  *rox.Engine
	log     commonlog.Logger
	handler protocol.Handler
	server  *glspserver.Server
	version string
}

func newLSPServer() *lspServer {
	s := &lspServer{
		docs:    make(map[string]string),
		engine:  rox.MustNewEngine(rox.Config{}),
		log:     commonlog.GetLogger("rox.lsp"),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

func runLSP() error {
	return newLSPServer().server.RunStdio()
}

func (s *lspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("rox LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *lspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *lspServer) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *lspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *lspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

func (s *lspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *lspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// full sync: the last event carries the whole document
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.docs[string(uri)] = whole.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, whole.Text)
	return nil
}

func (s *lspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *lspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return s.complete(text, prefix), nil
}

func (s *lspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.hover(text, word), nil
}

func (s *lspServer) complete(text, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if !strings.HasPrefix(label, prefix) {
			return
		}
		items = append(items, protocol.CompletionItem{
			Label:      label,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &label,
		})
	}

	program, _ := rox.Parse(text)
	if program != nil {
		classes := indexClasses(program)
		for _, name := range slices.Sorted(maps.Keys(classes)) {
			class := classes[name]
			detail := "class"
			if class.Superclass != nil {
				detail = fmt.Sprintf("class (< %s)", class.Superclass.Name)
			}
			add(name, protocol.CompletionItemKindClass, detail)
		}
		for _, stmt := range program.Statements {
			switch typed := stmt.(type) {
			case *rox.FunctionStmt:
				add(typed.Name, protocol.CompletionItemKindFunction, fmt.Sprintf("fun/%d", len(typed.Params)))
			case *rox.VarStmt:
				add(typed.Name, protocol.CompletionItemKindVariable, "var")
			}
		}
	}

	for _, name := range s.engine.BuiltinNames() {
		add(name, protocol.CompletionItemKindFunction, "builtin")
	}
	for _, kw := range rox.Keywords() {
		add(kw, protocol.CompletionItemKindKeyword, "keyword")
	}

	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func (s *lspServer) hover(text, word string) *protocol.Hover {
	var value string
	switch {
	case slices.Contains(rox.Keywords(), word):
		value = fmt.Sprintf("keyword `%s`", word)
	default:
		if builtin, ok := s.engine.Builtins()[word]; ok {
			value = fmt.Sprintf("**%s** builtin, arity %d", word, builtin.Builtin().Arity())
			break
		}
		program, _ := rox.Parse(text)
		if program == nil {
			return nil
		}
		value = describeDeclaration(program, word)
	}
	if value == "" {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

// describeDeclaration renders markdown for a top-level class or function
// named word, or "" when the program declares neither.
func describeDeclaration(program *rox.Program, word string) string {
	classes := indexClasses(program)
	if class, ok := classes[word]; ok {
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**", class.Name)
		if class.Superclass != nil {
			fmt.Fprintf(&b, " < %s", class.Superclass.Name)
		}
		b.WriteString("\n\n")

		owners := classes.methodOwners(class)
		names := slices.Sorted(maps.Keys(owners))
		if len(names) == 0 {
			b.WriteString("no methods")
		}
		for _, name := range names {
			if owners[name] == class.Name {
				fmt.Fprintf(&b, "- `%s`\n", name)
			} else {
				fmt.Fprintf(&b, "- `%s` (from %s)\n", name, owners[name])
			}
		}

		if ancestors := classes.ancestors(class); len(ancestors) > 0 {
			chain := make([]string, len(ancestors))
			for i, ancestor := range ancestors {
				chain[len(ancestors)-1-i] = ancestor.Name
			}
			fmt.Fprintf(&b, "\n**Hierarchy:** %s → **%s**", strings.Join(chain, " → "), class.Name)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*rox.FunctionStmt); ok && fn.Name == word {
			params := make([]string, len(fn.Params))
			for i, param := range fn.Params {
				params[i] = param.Name
			}
			return fmt.Sprintf("**fun %s**(%s)", fn.Name, strings.Join(params, ", "))
		}
	}
	return ""
}

func (s *lspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnosticsForSource(text)
	s.log.Debugf("publishing %d diagnostic(s) for %s", len(diagnostics), uri)
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnosticsForSource reports syntax errors, or lint warnings when the
// source parses cleanly.
func diagnosticsForSource(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	source := lspName

	program, err := rox.Parse(text)
	if err != nil {
		var compileErr *rox.CompileError
		if !errors.As(err, &compileErr) {
			return diagnostics
		}
		severity := protocol.DiagnosticSeverityError
		for _, syntaxErr := range compileErr.Errors {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    pointRange(syntaxErr.Pos),
				Severity: &severity,
				Source:   &source,
				Message:  syntaxErr.Message,
			})
		}
		return diagnostics
	}

	severity := protocol.DiagnosticSeverityWarning
	for _, warning := range analyzeProgram(program) {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    pointRange(warning.Pos),
			Severity: &severity,
			Source:   &source,
			Message:  warning.Message,
		})
	}
	return diagnostics
}

func pointRange(pos rox.Position) protocol.Range {
	p := protocol.Position{
		Line:      protocol.UInteger(max(pos.Line-1, 0)),
		Character: protocol.UInteger(max(pos.Column-1, 0)),
	}
	return protocol.Range{Start: p, End: p}
}

// extractPrefix returns the identifier fragment before the cursor.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := min(int(pos.Character), len(line))

	start := col
	for start > 0 && isIdentChar(rune(line[start-1])) {
		start--
	}
	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := min(int(pos.Character), len(line))

	start := col
	for start > 0 && isIdentChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isIdentChar(rune(line[end])) {
		end++
	}
	return line[start:end]
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func boolPtr(b bool) *bool {
	return &b
}
