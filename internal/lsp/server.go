// Package lsp serves lint diagnostics over stdio JSON-RPC. It keeps overlay
// buffers for open documents, re-analyzes a file shortly after it changes and
// publishes the translated diagnostics. Analysis runs per file: an edit only
// costs the edited file, and a newer edit cancels the in-flight pass.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sable/internal/diag"
	"sable/internal/linter"
	"sable/internal/plugin"
	"sable/internal/project"
	"sable/internal/source"
	"sable/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce time.Duration
}

// Server handles stdio JSON-RPC for the sable language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	svc      *linter.Service
	debounce time.Duration

	mu                sync.Mutex
	root              string
	openDocs          map[string]string
	versions          map[string]int
	seqs              map[string]uint64
	timers            map[string]*time.Timer
	cancels           map[string]context.CancelFunc
	published         map[string]struct{}
	shutdownRequested bool
	baseCtx           context.Context
}

// NewServer constructs a server around an analysis service.
func NewServer(in io.Reader, out io.Writer, svc *linter.Service, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		svc:       svc,
		debounce:  debounce,
		openDocs:  make(map[string]string),
		versions:  make(map[string]int),
		seqs:      make(map[string]uint64),
		timers:    make(map[string]*time.Timer),
		cancels:   make(map[string]context.CancelFunc),
		published: make(map[string]struct{}),
	}
}

// Run serves requests until exit. The returned error is ErrExit for a clean
// shutdown sequence and ErrExitWithoutShutdown otherwise.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	defer s.stopAll()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn().Err(err).Msg("failed to parse message")
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		go s.workspaceScan()
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdownRequested() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "workspace/didChangeWatchedFiles":
		return s.handleDidChangeWatchedFiles(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	log.Debug().Str("root", root).Msg("initialize")

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
		},
		ServerInfo: &serverInfo{Name: "sable", Version: version.Number},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.clearPublished()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) isShutdownRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = params.TextDocument.Text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	s.scheduleFile(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if _, open := s.openDocs[uri]; !open {
		s.mu.Unlock()
		return nil
	}
	s.openDocs[uri] = applyChanges(s.openDocs[uri], params.ContentChanges)
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	s.scheduleFile(uri)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if params.Text != nil {
		s.openDocs[uri] = *params.Text
	}
	s.mu.Unlock()
	s.scheduleFile(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	s.seqs[uri]++ // делает устаревшим всё, что ещё в полёте
	if cancel := s.cancels[uri]; cancel != nil {
		cancel()
		delete(s.cancels, uri)
	}
	if timer := s.timers[uri]; timer != nil {
		timer.Stop()
		delete(s.timers, uri)
	}
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil); err != nil {
			log.Warn().Err(err).Str("uri", uri).Msg("failed to clear diagnostics")
		}
	}
	return nil
}

func (s *Server) handleDidChangeWatchedFiles(msg *rpcMessage) error {
	var params didChangeWatchedFilesParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()

	fullRescan := false
	for _, change := range params.Changes {
		path := uriToPath(change.URI)
		if path == "" {
			continue
		}
		if isConfigPath(root, path) {
			fullRescan = true
			continue
		}
		uri := pathToURI(path)
		s.mu.Lock()
		_, open := s.openDocs[uri]
		s.mu.Unlock()
		if open {
			// открытый буфер уже первичен, дисковое событие не интересно
			continue
		}
		if change.Type == fileChangeDeleted {
			s.publishFile(uri, nil)
			continue
		}
		s.scheduleFile(uri)
	}

	if fullRescan {
		log.Debug().Msg("configuration changed, rescanning workspace")
		go s.workspaceScan()
	}
	return nil
}

// isConfigPath reports whether a changed path invalidates the whole scan:
// the manifest or anything under the plugin directory.
func isConfigPath(root, path string) bool {
	if filepath.Base(path) == project.ManifestName {
		return true
	}
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	return strings.HasPrefix(rel, plugin.Dir+"/")
}

// scheduleFile bumps the file's edit sequence, cancels any in-flight pass
// and arms the debounce timer.
func (s *Server) scheduleFile(uri string) {
	s.mu.Lock()
	s.seqs[uri]++
	seq := s.seqs[uri]
	if cancel := s.cancels[uri]; cancel != nil {
		cancel()
		delete(s.cancels, uri)
	}
	if timer := s.timers[uri]; timer != nil {
		timer.Stop()
	}
	s.timers[uri] = time.AfterFunc(s.debounce, func() {
		s.analyzeFile(uri, seq)
	})
	s.mu.Unlock()
}

// analyzeFile runs the pipeline for one file and publishes the result,
// unless a newer edit arrived in the meantime.
func (s *Server) analyzeFile(uri string, seq uint64) {
	s.mu.Lock()
	if s.seqs[uri] != seq || s.baseCtx == nil {
		s.mu.Unlock()
		return
	}
	root := s.root
	text, open := s.openDocs[uri]
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancels[uri] = cancel
	s.mu.Unlock()
	defer cancel()

	var override []byte
	if open {
		override = []byte(text)
	}
	started := time.Now()
	diags, err := s.svc.ScanFile(ctx, root, uriToPath(uri), override)
	if err != nil {
		switch {
		case errors.Is(err, linter.ErrNotAnalyzable):
			diags = nil
		case ctx.Err() != nil:
			return // вытеснены более свежей правкой
		default:
			log.Warn().Err(err).Str("uri", uri).Msg("file analysis failed")
			return
		}
	}
	log.Debug().Str("uri", uri).Int("count", len(diags)).Dur("elapsed", time.Since(started)).Msg("file analyzed")

	s.mu.Lock()
	stale := s.seqs[uri] != seq
	s.mu.Unlock()
	if stale {
		return
	}
	s.publishFile(uri, diags)
}

// workspaceScan configures plugins, scans the whole root and publishes
// every reported file. Stale entries from a previous publish are cleared.
func (s *Server) workspaceScan() {
	s.mu.Lock()
	root := s.root
	ctx := s.baseCtx
	s.mu.Unlock()
	if root == "" || ctx == nil {
		return
	}

	if err := s.svc.ConfigurePlugins(root); err != nil {
		log.Warn().Err(err).Msg("plugin configuration failed")
	}

	started := time.Now()
	res, err := s.svc.Scan(ctx, root)
	if res == nil {
		log.Error().Err(err).Msg("workspace scan failed")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("workspace scan finished with errors")
	}
	log.Debug().Int("files", len(res.Files)).Dur("elapsed", time.Since(started)).Msg("workspace scan complete")

	next := make(map[string]struct{}, len(res.Files))
	for _, path := range res.Paths() {
		next[pathToURI(path)] = struct{}{}
	}

	s.mu.Lock()
	prev := s.published
	s.published = next
	s.mu.Unlock()

	for _, path := range res.Paths() {
		uri := pathToURI(path)
		if err := s.sendPublish(uri, toWire(uri, res.Files[path])); err != nil {
			log.Warn().Err(err).Str("uri", uri).Msg("failed to publish diagnostics")
		}
	}
	for uri := range prev {
		if _, still := next[uri]; still {
			continue
		}
		if err := s.sendPublish(uri, nil); err != nil {
			log.Warn().Err(err).Str("uri", uri).Msg("failed to clear diagnostics")
		}
	}

	// после полного скана открытые буферы перечитываются из оверлея:
	// диск мог отставать от редактора
	s.mu.Lock()
	openURIs := make([]string, 0, len(s.openDocs))
	for uri := range s.openDocs {
		openURIs = append(openURIs, uri)
	}
	s.mu.Unlock()
	for _, uri := range openURIs {
		s.scheduleFile(uri)
	}
}

func (s *Server) publishFile(uri string, diags []linter.Diagnostic) {
	s.mu.Lock()
	if len(diags) == 0 {
		if _, had := s.published[uri]; !had {
			s.mu.Unlock()
			return
		}
		delete(s.published, uri)
	} else {
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()
	if err := s.sendPublish(uri, toWire(uri, diags)); err != nil {
		log.Warn().Err(err).Str("uri", uri).Msg("failed to publish diagnostics")
	}
}

func (s *Server) clearPublished() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for uri := range prev {
		if err := s.sendPublish(uri, nil); err != nil {
			log.Warn().Err(err).Str("uri", uri).Msg("failed to clear diagnostics")
		}
	}
}

// stopAll releases timers and in-flight analyses on the way out.
func (s *Server) stopAll() {
	s.mu.Lock()
	for _, timer := range s.timers {
		timer.Stop()
	}
	for _, cancel := range s.cancels {
		cancel()
	}
	s.timers = make(map[string]*time.Timer)
	s.cancels = make(map[string]context.CancelFunc)
	s.mu.Unlock()
	s.svc.Close()
}

func toWire(uri string, ds []linter.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(ds))
	for _, d := range ds {
		wire := lspDiagnostic{
			Range:    toLSPRange(d.Range),
			Severity: severityCode(d.Severity),
			Code:     d.Code,
			Source:   d.Source,
			Message:  d.Message,
		}
		for _, rel := range d.Related {
			wire.Related = append(wire.Related, relatedInformation{
				Location: location{URI: uri, Range: toLSPRange(rel.Range)},
				Message:  rel.Message,
			})
		}
		if d.Fix != nil {
			wire.Data = &diagnosticData{Fix: &fixData{Range: toLSPRange(d.Fix.Range), Text: d.Fix.Text}}
		}
		out = append(out, wire)
	}
	return out
}

func toLSPRange(r source.Range) lspRange {
	return lspRange{
		Start: position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   position{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}

func severityCode(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	case diag.SevInfo:
		return 3
	default:
		return 4
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
