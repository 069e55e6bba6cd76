package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sadopc/sqlhint/internal/completion"
	"github.com/sadopc/sqlhint/internal/config"
	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/metrics"
	"github.com/sadopc/sqlhint/internal/namespace"
	"github.com/sadopc/sqlhint/internal/schema"
	"github.com/sadopc/sqlhint/internal/watch"
)

// ErrExitWithoutShutdown is returned by Run when the client sent exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit without shutdown")

// Options configures a Server.
type Options struct {
	// Config is the starting configuration. initialize may override parts
	// of it. Nil means config.DefaultConfig.
	Config *config.Config
	// Schema is used when no schema file is configured, such as a
	// description introspected from a live database.
	Schema  namespace.Description
	Logger  *slog.Logger
	Version string
}

// Server implements the Language Server Protocol for sqlhint.
type Server struct {
	// Document management
	documents *DocumentStore

	baseConfig *config.Config
	baseSchema namespace.Description
	version    string

	// Completion state, replaced on initialize
	mu      sync.RWMutex
	engine  *completion.Engine
	watcher *watch.Watcher
	loadErr error

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	// Logging
	logger *slog.Logger

	// Shutdown state
	stateMu     sync.RWMutex
	initialized bool
	shutdown    bool
	exited      bool
}

// NewServer creates a new LSP server reading requests from reader and
// writing responses to writer.
func NewServer(reader io.Reader, writer io.Writer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		documents:  NewDocumentStore(),
		baseConfig: cfg,
		baseSchema: opts.Schema,
		version:    opts.Version,
		reader:     bufio.NewReader(reader),
		writer:     writer,
		logger:     logger,
	}
}

// Run processes messages until the input ends or the client sends exit.
// Schema reloads stop when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	s.logger.Info("sqlhint language server starting")

	for {
		msg, err := readMessage(s.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("Client disconnected")
				return nil
			}
			if errors.Is(err, ErrMalformed) {
				s.logger.Error("Error reading message", "error", err)
				continue
			}
			return fmt.Errorf("lsp read: %w", err)
		}

		if err := s.handleMessage(ctx, msg); err != nil {
			s.logger.Error("Error handling message", "method", msg.Method, "error", err)
		}

		s.stateMu.RLock()
		exited, shutdown := s.exited, s.shutdown
		s.stateMu.RUnlock()
		if exited {
			if !shutdown {
				return ErrExitWithoutShutdown
			}
			return nil
		}
	}
}

// Close stops the schema watcher.
func (s *Server) Close() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, rpcErr *JSONRPCError) {
	if id == nil {
		return
	}
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}

	if rpcErr != nil {
		msg.Error = rpcErr
	} else {
		resultBytes, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("Error marshaling result", "error", err)
			return
		}
		msg.Result = resultBytes
	}

	s.writeMessage(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
	}

	if params != nil {
		paramsBytes, err := json.Marshal(params)
		if err != nil {
			s.logger.Error("Error marshaling params", "method", method, "error", err)
			return
		}
		msg.Params = paramsBytes
	}

	s.writeMessage(&msg)
}

func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := writeMessage(s.writer, msg); err != nil {
		s.logger.Error("Error writing message", "error", err)
	}
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(ctx context.Context, msg *JSONRPCMessage) error {
	s.logger.Debug("Received", "method", msg.Method)

	s.stateMu.RLock()
	shutdown := s.shutdown
	s.stateMu.RUnlock()
	if shutdown && msg.Method != "exit" {
		s.sendResponse(msg.ID, nil, &JSONRPCError{
			Code:    CodeInvalidRequest,
			Message: "server is shut down",
		})
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(ctx, msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	default:
		if msg.ID != nil {
			// Unknown method with ID - respond with method not found
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    CodeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(ctx context.Context, msg *JSONRPCMessage) error {
	var params InitializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
			return err
		}
	}

	if err := s.configure(ctx, URIToPath(params.RootURI), params.InitializationOptions); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.mu.RLock()
	quote := string(s.engine.Dialect().QuoteChar())
	s.mu.RUnlock()

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindIncremental,
			},
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{".", quote},
			},
		},
		ServerInfo: &ServerInfo{Name: "sqlhint", Version: s.version},
	}

	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.stateMu.Lock()
	s.initialized = true
	s.stateMu.Unlock()
	s.logger.Info("Server initialized")

	s.mu.RLock()
	loadErr := s.loadErr
	s.mu.RUnlock()
	if loadErr != nil {
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeWarning,
			Message: "sqlhint: " + loadErr.Error(),
		})
	}
	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.stateMu.Lock()
	s.shutdown = true
	s.stateMu.Unlock()

	s.Close()
	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("Server shutdown")
	return nil
}

func (s *Server) handleExit(_ *JSONRPCMessage) error {
	s.stateMu.Lock()
	s.exited = true
	s.stateMu.Unlock()
	s.logger.Info("Server exit")
	return nil
}

// configure builds the completion sources from the base configuration with
// opts applied. Relative schema files in opts are resolved against root.
func (s *Server) configure(ctx context.Context, root string, opts *InitializationOptions) error {
	cfg := *s.baseConfig
	if opts != nil {
		if opts.Dialect != "" {
			cfg.Dialect = opts.Dialect
		}
		if opts.SchemaFile != "" {
			cfg.SchemaFile = opts.SchemaFile
			if !filepath.IsAbs(cfg.SchemaFile) && root != "" {
				cfg.SchemaFile = filepath.Join(root, cfg.SchemaFile)
			}
		}
		if opts.DefaultSchema != "" {
			cfg.DefaultSchema = opts.DefaultSchema
		}
		if opts.DefaultTable != "" {
			cfg.DefaultTable = opts.DefaultTable
		}
		if opts.UpperCaseKeywords != nil {
			cfg.UpperCaseKeywords = *opts.UpperCaseKeywords
		}
	}

	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return err
	}

	desc := s.baseSchema
	var loadErr error
	if cfg.SchemaFile != "" {
		loaded, err := schema.LoadFile(cfg.SchemaFile)
		metrics.ObserveReload(err)
		if err != nil {
			s.logger.Warn("Schema not loaded", "path", cfg.SchemaFile, "error", err)
			loadErr = err
		} else {
			desc = loaded
			s.logger.Info("Schema loaded", "path", cfg.SchemaFile, "entries", len(loaded))
		}
	}

	s.Close()
	s.mu.Lock()
	s.engine = completion.NewEngine(completion.EngineConfig{
		Dialect:           d,
		Schema:            desc,
		Options:           cfg.CompletionOptions(),
		UpperCaseKeywords: cfg.UpperCaseKeywords,
		Observer:          metrics.ObserveCompletion,
	})
	s.loadErr = loadErr
	s.mu.Unlock()
	s.logger.Info("Configured", "dialect", d.Name())

	if cfg.Watch && cfg.SchemaFile != "" {
		w, err := watch.New(cfg.SchemaFile, s.reload, &watch.Options{Logger: s.logger})
		if err != nil {
			s.logger.Warn("Schema watch disabled", "error", err)
			return nil
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			s.logger.Warn("Schema watch disabled", "error", err)
			return nil
		}
		s.mu.Lock()
		s.watcher = w
		s.mu.Unlock()
	}
	return nil
}

// reload replaces the schema of the current engine with the contents of
// path. A file that fails to load keeps the previous schema.
func (s *Server) reload(path string) {
	desc, err := schema.LoadFile(path)
	metrics.ObserveReload(err)
	if err != nil {
		s.logger.Warn("Schema reload failed", "path", path, "error", err)
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeWarning,
			Message: "sqlhint: " + err.Error(),
		})
		return
	}

	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine == nil {
		return
	}
	engine.UpdateSchema(desc)
	s.logger.Info("Schema reloaded", "path", path, "entries", len(desc))
}

// --- Document handlers ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
	metrics.OpenDocuments.Set(float64(s.documents.Len()))
	s.logger.Debug("Opened", "uri", params.TextDocument.URI)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.documents.Close(params.TextDocument.URI)
	metrics.OpenDocuments.Set(float64(s.documents.Len()))
	s.logger.Debug("Closed", "uri", params.TextDocument.URI)
	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	if !s.documents.Apply(params.TextDocument.URI, params.ContentChanges, params.TextDocument.Version) {
		s.logger.Warn("Change for unknown document", "uri", params.TextDocument.URI)
	}
	return nil
}

// --- Feature handlers ---

func (s *Server) handleCompletion(msg *JSONRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.sendResponse(msg.ID, s.getCompletions(params), nil)
	return nil
}

// getCompletions returns the ranked schema and keyword completions at the
// requested position.
func (s *Server) getCompletions(params CompletionParams) *CompletionList {
	list := &CompletionList{Items: []CompletionItem{}}

	doc := s.documents.Get(params.TextDocument.URI)
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if doc == nil || engine == nil {
		return list
	}

	pos := doc.PositionToOffset(params.Position)
	explicit := params.Context != nil && params.Context.TriggerKind == CompletionTriggerInvoked
	res := engine.CompleteText(doc.Content, pos, explicit)
	if res == nil {
		return list
	}

	edit := Range{
		Start: doc.OffsetToPosition(res.From),
		End:   doc.OffsetToPosition(res.End(pos)),
	}
	for i, c := range res.Options {
		list.Items = append(list.Items, CompletionItem{
			Label:    c.Label,
			Kind:     itemKind(c.Type),
			Detail:   c.Detail,
			SortText: fmt.Sprintf("%04d", i),
			TextEdit: &TextEdit{Range: edit, NewText: c.Text()},
		})
	}
	// Filtering capped the list; ask the client to come back as it narrows.
	list.IsIncomplete = len(res.Options) == completion.MaxFiltered
	return list
}

func itemKind(typ string) CompletionItemKind {
	switch typ {
	case namespace.TypeSchema:
		return CompletionItemKindModule
	case namespace.TypeTable:
		return CompletionItemKindClass
	case namespace.TypeColumn:
		return CompletionItemKindField
	case namespace.TypeKeyword:
		return CompletionItemKindKeyword
	case namespace.TypeConstant:
		return CompletionItemKindConstant
	case namespace.TypeType:
		return CompletionItemKindTypeParameter
	case namespace.TypeVariable:
		return CompletionItemKindVariable
	default:
		return CompletionItemKindText
	}
}
